package gridcalc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// Command is one call of the automation surface.
type Command struct {
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// NewCommand builds a command from Go values.
func NewCommand(method string, args ...any) (Command, error) {
	if len(args) == 0 {
		return Command{Method: method}, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return Command{Method: method, Args: raw}, nil
}

// argList is the positional argument array of a command.
type argList []gjson.Result

func parseArgs(raw json.RawMessage) (argList, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: args are not valid JSON", ErrInvalidArgument)
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: args must be an array", ErrInvalidArgument)
	}
	return argList(res.Array()), nil
}

func (a argList) has(i int) bool {
	return i < len(a) && a[i].Type != gjson.Null
}

// str returns a required string argument.
func (a argList) str(i int, name string) (string, error) {
	if !a.has(i) {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidArgument, name)
	}
	if a[i].Type != gjson.String {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, name)
	}
	return a[i].Str, nil
}

// optStr returns an optional string argument.
func (a argList) optStr(i int, name string) (string, error) {
	if !a.has(i) {
		return "", nil
	}
	return a.str(i, name)
}

func (a argList) integer(i int, name string) (int, error) {
	if !a.has(i) {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidArgument, name)
	}
	if a[i].Type != gjson.Number || a[i].Num != float64(int(a[i].Num)) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, name)
	}
	return int(a[i].Num), nil
}

// decode unmarshals an object argument into dst.
func (a argList) decode(i int, name string, dst any, required bool) error {
	if !a.has(i) {
		if required {
			return fmt.Errorf("%w: missing %s", ErrInvalidArgument, name)
		}
		return nil
	}
	if !a[i].IsObject() {
		return fmt.Errorf("%w: %s must be an object", ErrInvalidArgument, name)
	}
	if err := json.Unmarshal([]byte(a[i].Raw), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArgument, name, err)
	}
	return nil
}

// scalar converts a written value. Objects with a url become hyperlinks.
func (a argList) scalar(i int) (any, error) {
	if i >= len(a) {
		return nil, nil
	}
	r := a[i]
	switch {
	case r.IsObject():
		url := r.Get("url")
		if url.Type != gjson.String {
			return nil, fmt.Errorf("%w: object values need a url", ErrInvalidArgument)
		}
		text := r.Get("text").String()
		if text == "" {
			text = url.Str
		}
		return models.Hyperlink{URL: url.Str, Text: text}, nil
	case r.IsArray():
		return nil, fmt.Errorf("%w: arrays cannot be written to a cell", ErrInvalidArgument)
	}
	return r.Value(), nil
}

// Execute runs a single command against the engine.
//
// Results by method: formula returns the evaluated value, createChart the
// chart id, undo and redo whether anything changed, getState the grid, get
// the cell, computeStyles the style map. Other methods return nil.
func (e *Engine) Execute(ctx context.Context, cmd Command) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args, err := parseArgs(cmd.Args)
	if err != nil {
		return nil, NewCommandError(cmd.Method, "", err)
	}
	e.logger.Debug("command", slog.String("method", cmd.Method), slog.Int("args", len(args)))

	var ref string
	out, err := e.dispatch(cmd.Method, args, &ref)
	if err != nil {
		return nil, NewCommandError(cmd.Method, ref, err)
	}
	return out, nil
}

func (e *Engine) dispatch(method string, args argList, ref *string) (any, error) {
	var err error
	switch method {
	case "write":
		if *ref, err = args.str(0, "ref"); err != nil {
			return nil, err
		}
		value, err := args.scalar(1)
		if err != nil {
			return nil, err
		}
		var opts WriteOptions
		if err := args.decode(2, "options", &opts, false); err != nil {
			return nil, err
		}
		return nil, e.Write(*ref, value, opts)

	case "formula":
		if *ref, err = args.str(0, "ref"); err != nil {
			return nil, err
		}
		text, err := args.str(1, "formula")
		if err != nil {
			return nil, err
		}
		if err := e.Formula(*ref, text); err != nil {
			return nil, err
		}
		c, _, err := e.Get(*ref)
		return c.Value, err

	case "clear":
		start, err := args.str(0, "start")
		if err != nil {
			return nil, err
		}
		end, err := args.optStr(1, "end")
		if err != nil {
			return nil, err
		}
		*ref = start
		if end != "" {
			*ref = start + ":" + end
		}
		return nil, e.Clear(start, end)

	case "style":
		if *ref, err = args.str(0, "ref"); err != nil {
			return nil, err
		}
		var fragment models.CellStyle
		if err := args.decode(1, "style", &fragment, true); err != nil {
			return nil, err
		}
		return nil, e.Style(*ref, fragment)

	case "createChart":
		typ, err := args.str(0, "type")
		if err != nil {
			return nil, err
		}
		var cfg ChartConfig
		if err := args.decode(1, "config", &cfg, true); err != nil {
			return nil, err
		}
		*ref = cfg.DataRange
		return e.CreateChart(typ, cfg)

	case "getState":
		return e.State(), nil

	case "get":
		if *ref, err = args.str(0, "ref"); err != nil {
			return nil, err
		}
		c, _, err := e.Get(*ref)
		return c, err

	case "selectCell":
		if *ref, err = args.str(0, "ref"); err != nil {
			return nil, err
		}
		return nil, e.SelectCell(*ref)

	case "undo":
		return e.Undo(), nil

	case "redo":
		return e.Redo(), nil

	case "history":
		return e.History(), nil

	case "copy":
		if *ref, err = args.str(0, "range"); err != nil {
			return nil, err
		}
		return nil, e.Copy(*ref)

	case "paste":
		if *ref, err = args.str(0, "ref"); err != nil {
			return nil, err
		}
		return nil, e.Paste(*ref)

	case "recalculate":
		return nil, e.Recalculate()

	case "addConditionalFormat":
		var rule models.ConditionalFormat
		if err := args.decode(0, "rule", &rule, true); err != nil {
			return nil, err
		}
		*ref = rule.Range
		return nil, e.AddConditionalFormat(rule)

	case "removeConditionalFormat":
		i, err := args.integer(0, "index")
		if err != nil {
			return nil, err
		}
		return nil, e.RemoveConditionalFormat(i)

	case "computeStyles":
		return e.ComputeStyles(), nil

	case "reset":
		e.Reset()
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, method)
}

// ExecuteAll runs commands in order and stops at the first failure. It
// returns the results of the commands that ran.
func (e *Engine) ExecuteAll(ctx context.Context, cmds []Command) ([]any, error) {
	results := make([]any, 0, len(cmds))
	for _, cmd := range cmds {
		out, err := e.Execute(ctx, cmd)
		if err != nil {
			return results, err
		}
		results = append(results, out)
	}
	return results, nil
}

// ParseCommand decodes one script line. A line is either a JSON object
// {"method": ..., "args": [...]} or a call such as grid.write("A1", 5).
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	if strings.HasPrefix(line, "{") {
		var cmd Command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if cmd.Method == "" {
			return Command{}, fmt.Errorf("%w: command has no method", ErrInvalidArgument)
		}
		return cmd, nil
	}

	call, ok := strings.CutPrefix(line, "grid.")
	if !ok {
		return Command{}, fmt.Errorf("%w: %q is not a grid call", ErrInvalidArgument, line)
	}
	open := strings.IndexByte(call, '(')
	if open <= 0 || !strings.HasSuffix(call, ")") {
		return Command{}, fmt.Errorf("%w: malformed call %q", ErrInvalidArgument, line)
	}
	method := call[:open]
	inner := strings.TrimSpace(call[open+1 : len(call)-1])
	if inner == "" {
		return Command{Method: method}, nil
	}
	raw := "[" + inner + "]"
	if !gjson.Valid(raw) {
		return Command{}, fmt.Errorf("%w: arguments of %s are not JSON", ErrInvalidArgument, method)
	}
	return Command{Method: method, Args: json.RawMessage(raw)}, nil
}

// ParseScript reads one command per line. Blank lines and lines starting
// with # or // are skipped.
func ParseScript(r io.Reader) ([]Command, error) {
	var cmds []Command
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		cmds = append(cmds, cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return cmds, nil
}
