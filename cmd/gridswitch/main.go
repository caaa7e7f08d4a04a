package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridswitch/internal/command"
	"github.com/yourusername/gridswitch/internal/config"
	"github.com/yourusername/gridswitch/internal/daemon"
	"github.com/yourusername/gridswitch/internal/hypr"
	"github.com/yourusername/gridswitch/internal/ipc"
	"github.com/yourusername/gridswitch/internal/logging"
	"github.com/yourusername/gridswitch/internal/output"
	"github.com/yourusername/gridswitch/internal/switcher"
	"github.com/yourusername/gridswitch/internal/visualizer"
)

var (
	socketPath string
	configPath string
	timeout    time.Duration
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "gridswitch",
	Short: "2D workspace grid switcher for Hyprland",
	Long: `gridswitch arranges Hyprland workspaces in a two-dimensional grid and
lets you move through it with keybinds or multi-finger touchpad swipes.

Run "gridswitch daemon" inside a Hyprland session, then drive it with the
navigation commands or with gestures.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		// Flags are parsed by now, so the debug level is known.
		logging.Init(debugMode)
	},
}

// daemonCmd runs the long-lived process
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the gridswitch daemon",
	Long: `Starts the daemon: connects to Hyprland, binds the control socket,
and begins listening for commands and touchpad gestures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

// goCmd moves one cell in a direction
var goCmd = &cobra.Command{
	Use:       "go <direction>",
	Short:     "Switch one workspace cell in a direction",
	Long:      `Moves every monitor one cell in the given direction. Directions: left, right, up, down, up-left, up-right, down-left, down-right.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: directionNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := command.ParseDirection(args[0])
		if err != nil {
			printError(err.Error())
			return err
		}
		return sendCommand("go", map[string]interface{}{"direction": dir.String()})
	},
}

// switchCmd jumps to an absolute cell
var switchCmd = &cobra.Command{
	Use:   "switch <x> <y>",
	Short: "Jump to the workspace cell at (x, y)",
	Long:  `Jumps every monitor to the absolute grid cell. Coordinates are zero-based; the grid grows as needed.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil || x < 0 || y < 0 {
			printError("coordinates must be non-negative integers")
			return fmt.Errorf("invalid coordinates %q %q", args[0], args[1])
		}
		return sendCommand("switchTo", map[string]interface{}{"x": x, "y": y})
	},
}

// movegoCmd carries the focused window along
var movegoCmd = &cobra.Command{
	Use:       "movego <direction>",
	Short:     "Move the focused window one cell and follow it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: directionNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := command.ParseDirection(args[0])
		if err != nil {
			printError(err.Error())
			return err
		}
		return sendCommand("moveWindowAndGo", map[string]interface{}{"direction": dir.String()})
	},
}

// monitorCmd moves the focused window between monitors
var monitorCmd = &cobra.Command{
	Use:   "monitor <direction|index>",
	Short: "Move the focused window to another monitor",
	Long: `Moves the focused window to the monitor in the given direction, or to
the monitor with the given zero-based index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if idx, err := strconv.Atoi(args[0]); err == nil {
			return sendCommand("moveWindowToMonitorIndex", map[string]interface{}{"index": idx})
		}
		dir, err := command.ParseDirection(args[0])
		if err != nil {
			printError(fmt.Sprintf("%q is neither a direction nor a monitor index", args[0]))
			return err
		}
		return sendCommand("moveWindowToMonitor", map[string]interface{}{"direction": dir.String()})
	},
}

// toggleCmd toggles the visualizer overlay
var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the grid visualizer overlay",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand("toggleVisualizer", nil)
	},
}

// cancelCmd aborts a pending gesture move
var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a pending move and snap back to the current cell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand("cancelMove", nil)
	},
}

// statusCmd shows the daemon state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the grid position and monitors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := ipc.NewClient(socketPath, timeout)
		defer c.Close()

		raw, err := c.Status(context.Background())
		if err != nil {
			printError(fmt.Sprintf("Failed to get status: %v", err))
			return err
		}
		if jsonOutput {
			return printJSON(raw)
		}

		var st switcher.Status
		data, _ := json.Marshal(raw)
		if err := json.Unmarshal(data, &st); err != nil {
			printError(fmt.Sprintf("Unexpected status shape: %v", err))
			return err
		}
		return output.PrintStatus(os.Stdout, st, false)
	},
}

// pingCmd tests daemon connectivity
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connection to the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := ipc.NewClient(socketPath, timeout)
		defer c.Close()

		start := time.Now()
		if err := c.Ping(context.Background()); err != nil {
			printError(fmt.Sprintf("Ping failed: %v", err))
			return err
		}
		elapsed := time.Since(start)

		if jsonOutput {
			return printJSON(map[string]interface{}{"pong": true, "rtt": elapsed.String()})
		}
		successColor.Println("✓ Pong received")
		fmt.Printf("Response time: %v\n", elapsed)
		return nil
	},
}

// watchCmd streams visualizer events, mainly for overlay development
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Subscribe to visualizer events and print them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := ipc.NewClient(socketPath, timeout)
		defer c.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := c.Subscribe(ctx)
		if err != nil {
			printError(fmt.Sprintf("Subscribe failed: %v", err))
			return err
		}
		infoColor.Println("Watching visualizer events (Ctrl-C to stop)")

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return fmt.Errorf("event stream closed")
				}
				if jsonOutput {
					printJSON(ev)
					continue
				}
				fmt.Printf("%s %s", ev.Timestamp.Format("15:04:05.000"), ev.EventType)
				if state, ok := ev.Data["state"].(map[string]interface{}); ok {
					fmt.Printf("  cell=(%v,%v) grid=%vx%v offset=(%.2f,%.2f)",
						state["col"], state["row"], state["cols"], state["rows"],
						num(state["offsetX"]), num(state["offsetY"]))
				}
				fmt.Println()
			}
		}
	},
}

func runDaemon() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		printError(err.Error())
		return err
	}
	socket := socketPath
	if !rootCmd.PersistentFlags().Changed("socket") {
		socket = cfg.SocketPath()
	}

	lock, err := daemon.AcquireInstanceLock(socket)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer lock.Release()

	backend := hypr.NewWM()
	monitors, err := backend.Monitors()
	if err != nil {
		printError(fmt.Sprintf("Cannot query Hyprland monitors: %v", err))
		return err
	}
	if len(monitors) == 0 {
		printError("Hyprland reports no monitors")
		return fmt.Errorf("no monitors")
	}
	names := make([]string, len(monitors))
	for i, m := range monitors {
		names[i] = m.Name
	}
	logging.Info().Strs("monitors", names).Msg("daemon starting")

	sw := switcher.New(backend, names)
	sw.SetGestureConfig(cfg.Gestures)

	d := daemon.New(sw)
	listener := ipc.NewListener(socket, d.Status)
	if err := listener.SetMeta("visualizer", cfg.Visualizer); err != nil {
		return err
	}
	d.AddSource(listener)
	d.AddSource(hypr.NewGestureSource())
	d.AddEventSink(listener.Broadcast)
	d.AddEventSink(func(ev visualizer.Event) {
		logging.Debug().Str("kind", string(ev.Kind)).Msg("visualizer event")
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infoColor.Printf("gridswitch daemon running on %s\n", socket)
	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		printError(err.Error())
		return err
	}
	logging.Info().Msg("daemon stopped")
	return nil
}

// sendCommand delivers one command to the daemon and reports the result.
func sendCommand(method string, params map[string]interface{}) error {
	c := ipc.NewClient(socketPath, timeout)
	defer c.Close()

	result, err := c.Do(context.Background(), method, params)
	if err != nil {
		printError(err.Error())
		return err
	}
	if jsonOutput {
		return printJSON(result)
	}
	return nil
}

func directionNames() []string {
	return []string{
		"left", "right", "up", "down",
		"up-left", "up-right", "down-left", "down-right",
	}
}

func num(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", ipc.DefaultSocketPath(), "Control socket path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/gridswitch/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", ipc.DefaultTimeout, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(goCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(movegoCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	defer logging.Close()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Helper functions

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}
