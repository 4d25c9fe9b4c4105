package engine

import (
	"context"

	"github.com/besnikbelegu/rustbase/lib/query"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("engine")

// --------------------------------------------------------------------------
// Result Type
// --------------------------------------------------------------------------

// Result is the outcome of one statement: a value on success or an
// execution error. Exactly one of the two fields is set.
type Result struct {
	Value query.Value
	Err   *ExecError
}

// --------------------------------------------------------------------------
// Executor
// --------------------------------------------------------------------------

// Executor walks a parsed program and evaluates each statement against a
// session environment and the backend collaborator.
//
// Thread-safety: an Executor holds no per-program state and may be shared
// across concurrent sessions; isolation comes from each session using its
// own Environment.
type Executor struct {
	backend IBackend
}

// NewExecutor creates an executor dispatching to the given backend.
func NewExecutor(backend IBackend) *Executor {
	return &Executor{backend: backend}
}

// Execute evaluates the program statement by statement, in program order,
// and returns one result per executed statement. Execution is fail-fast: the
// first failing statement ends the program, its error is the last result,
// and no later statement runs. Already-applied backend side effects are not
// rolled back. Cancelling the context aborts before the next statement is
// dispatched; the results produced so far are returned.
func (ex *Executor) Execute(ctx context.Context, prog query.Program, env *Environment) []Result {
	results := make([]Result, 0, len(prog))
	for _, expr := range prog {
		if ctx.Err() != nil {
			Logger.Debugf("execution aborted by caller after %d statement(s)", len(results))
			break
		}
		value, err := ex.eval(expr, env)
		if err != nil {
			results = append(results, Result{Err: err})
			break
		}
		results = append(results, Result{Value: value})
	}
	return results
}

// --------------------------------------------------------------------------
// Statement Evaluation
// --------------------------------------------------------------------------

// eval evaluates a single expression to a value.
func (ex *Executor) eval(expr query.Expr, env *Environment) (query.Value, *ExecError) {
	switch e := expr.(type) {
	case *query.Assignment:
		return ex.evalAssignment(e, env)
	case *query.Monadic:
		return ex.evalMonadic(e, env)
	case *query.IntoBinding:
		return ex.evalInto(e, env)
	case *query.Single:
		return ex.evalSingle(e, env)
	case *query.Terms:
		return ex.evalTerms(e)
	default:
		// unreachable: the parser produces no other variants
		return query.Null(), newBackendFailure(NewBackendError(BackendRetCInternalError, "unknown expression variant"))
	}
}

// evalAssignment evaluates the right-hand side and binds the result. A
// failed right-hand side never binds the target.
func (ex *Executor) evalAssignment(e *query.Assignment, env *Environment) (query.Value, *ExecError) {
	value, err := ex.eval(e.Value, env)
	if err != nil {
		return query.Value{}, err
	}
	env.Bind(e.Target, value)
	return value, nil
}

// evalTerms returns the literal values themselves: the single value if there
// is exactly one, otherwise the array of values. Terms never dispatch to the
// backend.
func (ex *Executor) evalTerms(e *query.Terms) (query.Value, *ExecError) {
	if len(e.Values) == 1 {
		return e.Values[0], nil
	}
	return query.Array(e.Values...), nil
}

// evalMonadic resolves the operands and dispatches the keyword/verb pair to
// the backend. Operand-count expectations are keyword-dependent.
func (ex *Executor) evalMonadic(e *query.Monadic, env *Environment) (query.Value, *ExecError) {
	operands := make([]query.Value, 0, len(e.Operands))
	for _, op := range e.Operands {
		value, err := ex.resolveOperand(op, env)
		if err != nil {
			return query.Value{}, err
		}
		operands = append(operands, value)
	}

	switch e.Keyword {
	case query.KeywordInsert, query.KeywordUpdate:
		// one operand: payload only, the backend derives the key.
		// two operands: key and payload.
		var key, payload query.Value
		switch len(operands) {
		case 1:
			key, payload = query.Null(), operands[0]
		case 2:
			key, payload = operands[0], operands[1]
		default:
			return query.Value{}, newArityMismatch(e.Keyword, "1 or 2", len(operands))
		}
		if e.Keyword == query.KeywordInsert {
			return ex.dispatch(ex.backend.Insert(e.Verb, key, payload))
		}
		return ex.dispatch(ex.backend.Update(e.Verb, key, payload))

	case query.KeywordGet, query.KeywordDelete:
		if len(operands) != 1 {
			return query.Value{}, newArityMismatch(e.Keyword, "1", len(operands))
		}
		if e.Keyword == query.KeywordGet {
			return ex.dispatch(ex.backend.Get(e.Verb, operands[0]))
		}
		return ex.dispatch(ex.backend.Delete(e.Verb, operands[0]))

	case query.KeywordList:
		filter, err := listFilter(e.Keyword, operands)
		if err != nil {
			return query.Value{}, err
		}
		return ex.dispatch(ex.backend.List(e.Verb, filter))

	default:
		return query.Value{}, newArityMismatch(e.Keyword, "0", len(operands))
	}
}

// evalInto dispatches the keyword with the payload and binds the returned
// value to the target identifier. The target name doubles as the storage key
// for insert and update, so `insert {"a":1} into x` stores under "x" and
// binds x to the stored value.
func (ex *Executor) evalInto(e *query.IntoBinding, env *Environment) (query.Value, *ExecError) {
	// get on an environment-bound identifier never touches the backend
	if e.Keyword == query.KeywordGet && e.Payload.Expr == nil {
		value, ok := env.Lookup(e.Payload.Ident)
		if !ok {
			return query.Value{}, newUnboundIdentifier(e.Payload.Ident)
		}
		env.Bind(e.Target, value)
		return value, nil
	}

	payload, err := ex.resolveOperand(e.Payload, env)
	if err != nil {
		return query.Value{}, err
	}

	var result query.Value
	switch e.Keyword {
	case query.KeywordInsert:
		result, err = ex.dispatch(ex.backend.Insert(query.VerbDatabase, query.String_(e.Target), payload))
	case query.KeywordUpdate:
		result, err = ex.dispatch(ex.backend.Update(query.VerbDatabase, query.String_(e.Target), payload))
	case query.KeywordGet:
		result, err = ex.dispatch(ex.backend.Get(query.VerbDatabase, payload))
	case query.KeywordDelete:
		result, err = ex.dispatch(ex.backend.Delete(query.VerbDatabase, payload))
	case query.KeywordList:
		filter, ferr := listFilter(e.Keyword, []query.Value{payload})
		if ferr != nil {
			return query.Value{}, ferr
		}
		result, err = ex.dispatch(ex.backend.List(query.VerbDatabase, filter))
	}
	if err != nil {
		return query.Value{}, err
	}

	env.Bind(e.Target, result)
	return result, nil
}

// evalSingle resolves the optional identifier and dispatches to the backend
// against the database namespace.
func (ex *Executor) evalSingle(e *query.Single, env *Environment) (query.Value, *ExecError) {
	if e.Operand == "" {
		if e.Keyword != query.KeywordList {
			return query.Value{}, newArityMismatch(e.Keyword, expectedArity(e.Keyword), 0)
		}
		return ex.dispatch(ex.backend.List(query.VerbDatabase, nil))
	}

	resolved, ok := env.Lookup(e.Operand)
	if !ok {
		return query.Value{}, newUnboundIdentifier(e.Operand)
	}

	switch e.Keyword {
	case query.KeywordGet:
		return ex.dispatch(ex.backend.Get(query.VerbDatabase, resolved))
	case query.KeywordDelete:
		return ex.dispatch(ex.backend.Delete(query.VerbDatabase, resolved))
	case query.KeywordList:
		filter, err := listFilter(e.Keyword, []query.Value{resolved})
		if err != nil {
			return query.Value{}, err
		}
		return ex.dispatch(ex.backend.List(query.VerbDatabase, filter))
	default:
		// insert and update need a payload and have no single form
		return query.Value{}, newArityMismatch(e.Keyword, expectedArity(e.Keyword), 1)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// resolveOperand turns an operand into a value: a nested expression is
// evaluated, a bare identifier is looked up in the session environment.
func (ex *Executor) resolveOperand(op query.Operand, env *Environment) (query.Value, *ExecError) {
	if op.Expr != nil {
		return ex.eval(op.Expr, env)
	}
	value, ok := env.Lookup(op.Ident)
	if !ok {
		return query.Value{}, newUnboundIdentifier(op.Ident)
	}
	return value, nil
}

// dispatch wraps a backend call result, converting backend errors into
// execution errors.
func (ex *Executor) dispatch(value query.Value, err error) (query.Value, *ExecError) {
	if err != nil {
		return query.Value{}, newBackendFailure(err)
	}
	return value, nil
}

// listFilter validates the optional list filter. A filter must be a string
// prefix.
func listFilter(keyword query.Keyword, operands []query.Value) (*query.Value, *ExecError) {
	switch len(operands) {
	case 0:
		return nil, nil
	case 1:
		if operands[0].Kind != query.KindString {
			return nil, newTypeMismatch("string", operands[0].Kind)
		}
		return &operands[0], nil
	default:
		return nil, newArityMismatch(keyword, "0 or 1", len(operands))
	}
}

// expectedArity names the operand count a keyword expects, for error
// messages.
func expectedArity(keyword query.Keyword) string {
	switch keyword {
	case query.KeywordInsert, query.KeywordUpdate:
		return "1 or 2"
	case query.KeywordGet, query.KeywordDelete:
		return "1"
	case query.KeywordList:
		return "0 or 1"
	default:
		return "0"
	}
}
