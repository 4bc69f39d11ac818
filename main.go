package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jarvisgally/gamecmd/api"
	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/config"
	"github.com/jarvisgally/gamecmd/console"
	"github.com/jarvisgally/gamecmd/control"
	"github.com/jarvisgally/gamecmd/gameplay"
	"github.com/jarvisgally/gamecmd/player"
	"github.com/jarvisgally/gamecmd/session"
	"github.com/sirupsen/logrus"
)

var (
	// Version
	version = "0.1.0"

	// Flag
	configFile  = flag.String("config", "server.json", "Path of the server config file, empty for defaults")
	operator    = flag.String("operator", "operator", "Name of the local console player, who has owner level")
	showVersion = flag.Bool("version", false, "Print the version and exit")

	remote = control.NewRemoteCommand(flag.CommandLine)
)

//
// Version
//

func printVersion() {
	fmt.Printf("gamecmd %v, %v %v %v\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func main() {
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	// Check if running a remote command
	if remote.Requested() {
		if err := remote.Execute(context.Background(), flag.Args(), os.Stdout); err != nil {
			logrus.Error(err)
			os.Exit(1)
		}
		return
	}

	printVersion()

	conf, err := config.Load(*configFile)
	if err != nil {
		logrus.Errorf("can not load config: %v", err)
		os.Exit(-1)
	}
	level, _ := logrus.ParseLevel(conf.LogLevel)
	logrus.SetLevel(level)
	log := logrus.StandardLogger()

	// Context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := newSession(ctx, conf, log)
	if err != nil {
		logrus.Errorf("can not create session: %v", err)
		os.Exit(-1)
	}
	registry, _ := command.FromSession(sess)
	players, _ := session.Resolve[*player.Manager](sess, playersID)
	printers, _ := session.Resolve[*gameplay.Printers](sess, printersID)
	dispatcher := console.NewDispatcher(registry, players, log)

	go printers.Run(ctx, time.Duration(conf.Printer.Interval))

	if conf.API.Listen != "" {
		go func() {
			if err := api.RunControlAPI(ctx, dispatcher, conf.API, log); err != nil {
				logrus.Errorf("control api stopped: %v", err)
			}
		}()
	}

	// Local console
	op, err := players.Add(*operator, command.LevelOwner)
	if err != nil {
		logrus.Errorf("can not add operator: %v", err)
		os.Exit(-1)
	}
	op.SetCommandRate(0, 0)
	op.SetOutput(os.Stdout)
	con := console.New(dispatcher)
	con.Prefix = conf.Prefix
	con.Chat = func(p *player.Player, line string) {
		players.Broadcast("<%s> %s", p.Name(), line)
	}
	go func() {
		if err := con.Run(ctx, os.Stdin, op); err != nil && ctx.Err() == nil {
			logrus.Errorf("console stopped: %v", err)
		}
	}()

	// Signals
	{
		osSignals := make(chan os.Signal, 1)
		signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
		<-osSignals
	}
	logrus.Info("shutting down")
}
