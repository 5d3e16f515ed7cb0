package main

import (
	"fmt"

	"userhub/admin-api/app"
	"userhub/admin-api/config"
	"userhub/admin-api/db"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := app.NewRouter()
	if err != nil {
		panic(err)
	}

	if config.SeedAdminRequested() {
		if err := db.SeedAdmin(a.Deps.DB, a.Deps.Argon); err != nil {
			panic(err)
		}
		return
	}

	addr := fmt.Sprintf(":%d", viper.GetInt("host.port"))

	zap.L().Info("Server starting", zap.String("addr", addr))

	if viper.GetBool("host.ssl.enabled") {
		err = a.Router.RunTLS(addr,
			viper.GetString("host.ssl.certificate_path"),
			viper.GetString("host.ssl.certificate_key_path"))
	} else {
		err = a.Router.Run(addr)
	}
	if err != nil {
		panic(err)
	}
}
