package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/fcmpush/cmd/api"
	"github.com/yusufsyaifudin/fcmpush/cmd/gen/genapidoc"
	"github.com/yusufsyaifudin/fcmpush/cmd/migrate"
)

func main() {
	const appName, appVersion = "fcmpush", "1.0.0"

	apiCmd := api.NewCmd(appName, appVersion)

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":    apiCmd, // default command if no subcommand defined
		"api": apiCmd,
		"apidoc": func() (cli.Command, error) {
			return genapidoc.NewApiDocCmd(genapidoc.ApiDocCfg{
				AppName:    appName,
				AppVersion: appVersion,
			})
		},
		"migrate up":    migrate.NewCmd(migrate.DirectionUp),
		"migrate down":  migrate.NewCmd(migrate.DirectionDown),
		"migrate print": migrate.NewCmd(migrate.DirectionPrint),
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
