// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "HerdWatch")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "herdwatch.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("monitor.sccthreshold", 20.0)
	viper.SetDefault("monitor.systemtype", string(herd.SystemOther))
	viper.SetDefault("monitor.minoverlap", 20)
	viper.SetDefault("monitor.dryoffgestationdays", 180)
	viper.SetDefault("monitor.firsttest.mindim", 5)
	viper.SetDefault("monitor.firsttest.maxdim", 35)

	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "herdwatch.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "herdwatch")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "herdwatch")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
