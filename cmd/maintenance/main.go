package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/config"
	"github.com/iautomae/platform/internal/elevenlabs"
	"github.com/iautomae/platform/internal/leads"
	"github.com/iautomae/platform/pkg/database"
	"github.com/iautomae/platform/pkg/logging"
)

func main() {
	var (
		configPath = flag.String("config", config.BaseConfigFile, "Configuration file path")
		repair     = flag.Bool("repair", false, "Apply repairs instead of reporting only")
		user       = flag.String("user", "", "Target user ID for user-scoped commands")
		list       = flag.Bool("list", false, "List available commands")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available commands:")
		for _, c := range listCommands() {
			fmt.Printf("  - %s: %s\n", c.Name(), c.Description())
		}
		return
	}

	name := flag.Arg(0)
	if name == "" {
		fmt.Println("usage: maintenance [-config <path>] [-repair] [-user <id>] <command>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	command, ok := getCommand(name)
	if !ok {
		log.Fatalf("unknown command: %s (use -list to see available commands)", name)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(&cfg.Logging)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	env := &Env{
		DB:     db,
		Logger: logger,
		Config: cfg,
		Agents: agents.New(db, logger, cfg.Pagination),
		Leads:  leads.New(db, logger, cfg.Pagination),
		Vendor: elevenlabs.NewClient(cfg.ElevenLabs, logger),
		Repair: *repair,
		UserID: *user,
	}

	if err := command.Run(context.Background(), env); err != nil {
		log.Fatalf("%s failed: %v", name, err)
	}

	fmt.Printf("%s completed\n", name)
}
