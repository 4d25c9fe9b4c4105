package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/besnikbelegu/rustbase/lib/engine"
	"github.com/besnikbelegu/rustbase/lib/query"
	"github.com/besnikbelegu/rustbase/lib/storage"
	"github.com/besnikbelegu/rustbase/rpc/common"
	"github.com/besnikbelegu/rustbase/rpc/serializer"
	"github.com/besnikbelegu/rustbase/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// Request metrics, exposed via the http transport's /metrics endpoint
var (
	queriesTotal     = metrics.NewCounter("rustbase_queries_total")
	parseErrorsTotal = metrics.NewCounter("rustbase_parse_errors_total")
	execErrorsTotal  = metrics.NewCounter("rustbase_exec_errors_total")
	queryDuration    = metrics.NewSummary("rustbase_query_duration_seconds")
)

// NewRPCServer creates a new RPC server serving the query language over the
// given transport. It takes a config, backend, transport and serializer as
// parameters.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		backend,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	backend *storage.Backend,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		backend:    backend,
		executor:   engine.NewExecutor(backend),
		transport:  transport,
		serializer: serializer,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	backend    *storage.Backend
	executor   *engine.Executor
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg *common.Message

		// Decode the request
		if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else if msg.MsgType != common.MsgTQuery {
			respMsg = common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", msg.MsgType))
		} else {
			respMsg = s.handleQuery(msg.Query)
		}

		// Return result
		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			Logger.Errorf("Failed to serialize response: %v", err)
			return nil
		}
		return val
	})
}

// handleQuery parses and executes one query program. Each request runs in a
// fresh session environment, so identifier bindings live exactly as long as
// one request.
func (s *rpcServer) handleQuery(text string) *common.Message {
	queriesTotal.Inc()
	start := time.Now()
	defer func() {
		queryDuration.UpdateDuration(start)
	}()

	// Parse the query text
	prog, err := query.ParseProgram(text)
	if err != nil {
		parseErrorsTotal.Inc()
		var perr *query.ParseError
		if errors.As(err, &perr) {
			return common.NewParseErrorResponse(perr.Kind.String(), perr.Pos, perr.Error())
		}
		return common.NewParseErrorResponse("Unknown", 0, err.Error())
	}

	// Configure the request timeout
	ctx := context.Background()
	if s.config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	// Execute against a fresh session environment
	env := engine.NewEnvironment()
	results := s.executor.Execute(ctx, prog, env)

	// Convert the results into the wire representation
	wireResults := make([]common.StatementResult, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			execErrorsTotal.Inc()
			wireResults = append(wireResults, common.StatementResult{
				Ok:      false,
				Body:    query.Null(),
				Err:     result.Err.Error(),
				ErrKind: result.Err.Kind.String(),
			})
		} else {
			wireResults = append(wireResults, common.StatementResult{
				Ok:   true,
				Body: result.Value,
			})
		}
	}
	return common.NewQueryResponse(wireResults)
}

// Serve starts the RPC server
// This function will also initialize the logging and start the transport layer
func (s *rpcServer) Serve() error {
	common.InitLoggers(s.config)
	s.registerTransportHandler()
	return s.transport.Listen(s.config)
}
