package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/venue/internal/app"
	"github.com/user/venue/internal/auth"
	"github.com/user/venue/internal/bridge"
	"github.com/user/venue/internal/command"
	"github.com/user/venue/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "venue",
	Short: "Deployment status in the system tray",
	Long:  `Venue shows the state of your latest deployment as a tray icon with a popup window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Venue %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tray app",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <ready|error|building|unknown>",
	Short: "Set the tray status of the running app",
	Long: `Set the tray icon of a running Venue instance. Unrecognized values show
the gray icon. With --deployment the value is read as a deployment state
(READY, ERROR, CANCELED, BUILDING, QUEUED, INITIALIZING).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deployment, _ := cmd.Flags().GetBool("deployment")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		statusArgs := command.TrayStatusArgs{Status: args[0]}
		if deployment {
			statusArgs = command.TrayStatusArgs{DeploymentState: args[0]}
		}
		return sendStatus(cmd, statusArgs, timeout)
	},
}

var resetTokenCmd = &cobra.Command{
	Use:   "reset-token",
	Short: "Discard the bridge token",
	Long: `Remove the bridge token from the system keyring. The next start of the tray
app generates a new one, which locks out anything holding the old token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := auth.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize token store: %w", err)
		}
		if !store.HasToken() {
			fmt.Println("No bridge token stored")
			return nil
		}
		if err := store.DeleteToken(); err != nil {
			return fmt.Errorf("failed to remove bridge token: %w", err)
		}
		fmt.Println("Bridge token removed; restart venue to generate a new one")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetTokenCmd)

	statusCmd.Flags().BoolP("deployment", "d", false, "Treat the value as a deployment state")
	statusCmd.Flags().Duration("timeout", 5*time.Second, "How long to wait for the running app")

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	application, err := app.New(app.Options{ConfigPath: cfgPath})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		application.Quit()
	}()

	return application.Run()
}

func sendStatus(cmd *cobra.Command, args command.TrayStatusArgs, timeout time.Duration) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	mgr, err := config.NewManager(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := auth.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}
	token, err := store.LoadToken()
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return errors.New("no bridge token found; start venue first")
		}
		return fmt.Errorf("failed to load bridge token: %w", err)
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(mgr.Get().BridgePort))
	client := bridge.NewClient(addr, token)
	client.SetTimeout(timeout)

	return client.Invoke(context.Background(), command.SetTrayStatus, args)
}
