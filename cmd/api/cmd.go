package api

import (
	"context"
	"flag"
	"log"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/fcmpush/config"
	"github.com/yusufsyaifudin/fcmpush/extd"
	"github.com/yusufsyaifudin/ylog"
)

const (
	ExitSuccess = 0
	ExitErr     = 1
)

type Cmd struct {
	flags      *flag.FlagSet
	appName    string
	appVersion string
	configFile string
}

func NewCmd(appName, appVersion string) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{
			flags:      &flag.FlagSet{},
			appName:    appName,
			appVersion: appVersion,
		}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd("", "")

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("api", flag.ContinueOnError)
	c.flags.StringVar(&c.configFile, "config", "config.yml",
		"Config file to load")
	c.flags.StringVar(&c.configFile, "c", "config.yml",
		"Alias for config file to load")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: fcmpush api [-c config.yml]

  Starts the HTTP API: sending FCM webpush messages, managing device tokens and topics,
  and serving the browser client config.`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing config argument: %s", err)
		return ExitErr
	}

	ctx, err := extd.SetupLog(context.Background())
	if err != nil {
		log.Printf("error setup log: %s", err)
		return ExitErr
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		ylog.Error(ctx, "error load config", ylog.KV("error", err))
		return ExitErr
	}

	err = extd.RunServer(ctx, extd.ServerConfig{
		AppName:    c.appName,
		AppVersion: c.appVersion,
		Config:     cfg,
	})
	if err != nil {
		return ExitErr
	}

	return ExitSuccess
}

func (c *Cmd) Synopsis() string {
	return `Start the HTTP API server`
}
