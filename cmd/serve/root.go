package serve

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cmdUtil "github.com/besnikbelegu/rustbase/cmd/util"
	"github.com/besnikbelegu/rustbase/lib/db"
	"github.com/besnikbelegu/rustbase/lib/db/engines/dust"
	"github.com/besnikbelegu/rustbase/lib/storage"
	"github.com/besnikbelegu/rustbase/rpc/common"
	"github.com/besnikbelegu/rustbase/rpc/serializer"
	"github.com/besnikbelegu/rustbase/rpc/server"
	"github.com/besnikbelegu/rustbase/rpc/transport"
	"github.com/besnikbelegu/rustbase/rpc/transport/http"
	"github.com/besnikbelegu/rustbase/rpc/transport/tcp"
	"github.com/besnikbelegu/rustbase/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the rustbase server",
		Long:    `Start the rustbase server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is RUSTBASE_<flag> (e.g. RUSTBASE_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:23568", cmdUtil.WrapString("The address on which the API will listen (e.g. 0.0.0.0:23568, /tmp/rustbase.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Request timeout in seconds (0 = no timeout)"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("DataDir is the directory used for storing snapshots. Set to an empty string to disable snapshots"))

	key = "cache-size"
	ServeCmd.PersistentFlags().Int(key, 4096, cmdUtil.WrapString("Maximum number of values held by the read-through cache"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("The size of the transport read/write buffers (in KB, ignored for http)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Maximum number of concurrent workers per connection (ignored for http)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The linger time (in seconds, only for tcp)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.CacheSize = viper.GetInt("cache-size")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint: viper.GetString("endpoint"),
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("buffer-size") * 1024,
			ReadBufferSize:  viper.GetInt("buffer-size") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
		},
	}

	return nil
}

// run starts the rustbase server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	bufferSize := viper.GetInt("buffer-size") * 1024
	workers := viper.GetInt("workers-per-conn")
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport(bufferSize, workers)
	case "unix":
		t = unix.NewUnixServerTransport(bufferSize, workers)
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	// Create the storage backend
	backend := storage.NewBackend(
		func() db.KVDB { return dust.NewDustDB(nil) },
		storage.Options{CacheSize: serveCmdConfig.CacheSize},
	)

	// Restore the snapshot from a previous run, if one exists
	if err := loadSnapshot(backend); err != nil {
		return err
	}

	// Save a snapshot on SIGINT/SIGTERM before exiting
	go handleShutdown(backend)

	serv := server.NewRPCServer(
		*serveCmdConfig,
		backend,
		t,
		s,
	)

	return serv.Serve()
}

// loadSnapshot restores the backend from the snapshot file if it exists
func loadSnapshot(backend *storage.Backend) error {
	path := serveCmdConfig.SnapshotPath()
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first start, nothing to restore
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if err := backend.Load(f); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	server.Logger.Infof("Restored snapshot from %s", path)
	return nil
}

// handleShutdown waits for a termination signal, saves a snapshot and exits
func handleShutdown(backend *storage.Backend) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	path := serveCmdConfig.SnapshotPath()
	if path != "" {
		if err := saveSnapshot(backend, path); err != nil {
			server.Logger.Errorf("Failed to save snapshot: %v", err)
			os.Exit(1)
		}
		server.Logger.Infof("Saved snapshot to %s", path)
	}
	os.Exit(0)
}

// saveSnapshot writes the backend state to the snapshot file
func saveSnapshot(backend *storage.Backend, path string) error {
	if err := os.MkdirAll(serveCmdConfig.DataDir, 0o755); err != nil {
		return err
	}

	// write to a temp file first so a failed save never corrupts the old snapshot
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := backend.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("rustbase")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
