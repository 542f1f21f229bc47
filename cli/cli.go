package cli

import (
	"github.com/flastex/go-bpmn/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	noEngineRequired = "noEngineRequired" // annotation, indicating that no engine is required to run the command
	program          = "go-bpmn"
)

func New(version string) *Cli {
	cli := Cli{version: version}

	cli.rootCmd = newRootCmd(&cli)

	return &cli
}

type Cli struct {
	version string

	rootCmd *cobra.Command

	v      *viper.Viper
	config config
	logger *zap.Logger

	e        engine.Engine
	shutdown func()
}

func (c *Cli) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func (c *Cli) help(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func newRootCmd(cli *Cli) *cobra.Command {
	cli.v = viper.New()

	c := cobra.Command{
		Use:   program,
		Short: "Validate and run BPMN 2.0 processes",
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			c.SilenceUsage = true

			if err := readConfig(cli.v); err != nil {
				return err
			}

			config, err := loadConfig(cli.v)
			if err != nil {
				return err
			}

			cli.config = config
			cli.logger = newLogger(config.LogLevel)

			if _, ok := c.Annotations[noEngineRequired]; ok {
				return nil
			}

			if cli.e != nil {
				return nil // skip engine creation when testing
			}

			e, shutdown, err := newEngine(config, cli.logger)
			if err != nil {
				return err
			}

			cli.e = e
			cli.shutdown = shutdown
			return nil
		},
		RunE: cli.help,
		PersistentPostRun: func(c *cobra.Command, _ []string) {
			if cli.shutdown != nil {
				cli.shutdown()
			}
			if cli.logger != nil {
				_ = cli.logger.Sync()
			}
		},
		Annotations: map[string]string{noEngineRequired: ""},
	}

	flagConfig(&c, cli.v)

	c.AddCommand(newPathCmd(cli))
	c.AddCommand(newRunCmd(cli))
	c.AddCommand(newValidateCmd(cli))
	c.AddCommand(newVersionCmd(cli))

	return &c
}

func newVersionCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(c *cobra.Command, _ []string) {
			c.Println(cli.version)
		},
		Annotations: map[string]string{noEngineRequired: ""},
	}

	return &c
}
