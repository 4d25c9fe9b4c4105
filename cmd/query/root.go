package query

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/besnikbelegu/rustbase/cmd/util"
	"github.com/besnikbelegu/rustbase/rpc/client"
	"github.com/besnikbelegu/rustbase/rpc/common"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.RPCClient

	// QueryCmd represents the query command
	QueryCmd = &cobra.Command{
		Use:               "query [query]",
		Short:             "Run a query against a rustbase server",
		Long:              `Run a query against a rustbase server. With an argument the query is executed once and the results are printed. Without an argument an interactive prompt is started (type exit to leave).`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: setupClient,
		RunE:              run,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the query command
	util.SetupRPCClientFlags(QueryCmd)
}

// setupClient initializes the RPC client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the client
	rpcClient, err = client.NewRPCClient(*config, t, s)
	return err
}

// run executes a single query or starts the interactive prompt
func run(_ *cobra.Command, args []string) error {
	defer rpcClient.Close()

	// Case one-shot query
	if len(args) == 1 {
		results, err := rpcClient.Query(args[0])
		if err != nil {
			return err
		}
		printResults(results)
		return nil
	}

	// Case interactive prompt
	fmt.Println("rustbase interactive query prompt (type exit to leave)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			break
		}

		results, err := rpcClient.Query(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResults(results)
	}
	return scanner.Err()
}

// printResults prints one line per statement result
func printResults(results []common.StatementResult) {
	for i, result := range results {
		if result.Ok {
			fmt.Printf("[%d] %s\n", i, result.Body)
		} else {
			fmt.Printf("[%d] error: %s\n", i, result.Err)
		}
	}
}
