// Package server exposes an Engine over HTTP for external automation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/output"
)

// Controller serializes requests onto a single Engine.
type Controller struct {
	mu     sync.Mutex
	engine *gridcalc.Engine
	logger *slog.Logger
}

type CellEndpointParams struct {
	Ref string `uri:"ref" binding:"required"`
}

type StateQuery struct {
	Styles bool `form:"styles"`
}

// NewController creates a Controller. A nil logger uses slog.Default().
func NewController(engine *gridcalc.Engine, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{engine: engine, logger: logger.With(slog.String("component", "server"))}
}

// CommandsAction runs one command object or an array of commands.
func (api *Controller) CommandsAction(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid JSON"})
		return
	}

	if gjson.ParseBytes(body).IsArray() {
		var cmds []gridcalc.Command
		if err := json.Unmarshal(body, &cmds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		api.mu.Lock()
		results, err := api.engine.ExecuteAll(c.Request.Context(), cmds)
		for i := range results {
			results[i] = present(results[i])
		}
		api.mu.Unlock()

		if err != nil {
			api.logger.Warn("command batch failed", slog.Int("completed", len(results)), slog.Any("error", err))
			c.JSON(statusFor(err), gin.H{"results": results, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	var cmd gridcalc.Command
	if err := json.Unmarshal(body, &cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	api.mu.Lock()
	result, err := api.engine.Execute(c.Request.Context(), cmd)
	result = present(result)
	api.mu.Unlock()

	if err != nil {
		api.logger.Warn("command failed", slog.String("method", cmd.Method), slog.Any("error", err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GetStateAction returns the grid. ?styles=true adds conditional format results.
func (api *Controller) GetStateAction(c *gin.Context) {
	query := StateQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	api.mu.Lock()
	var styles map[models.Address]models.CellStyle
	if query.Styles {
		styles = api.engine.ComputeStyles()
	}
	view := api.view(styles)
	api.mu.Unlock()

	c.JSON(http.StatusOK, view)
}

func (api *Controller) GetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	api.mu.Lock()
	cell, ok, err := api.engine.Get(params.Ref)
	api.mu.Unlock()

	switch {
	case err != nil:
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
	case !ok:
		c.JSON(http.StatusNotFound, gin.H{"error": "cell " + params.Ref + " is empty"})
	default:
		c.JSON(http.StatusOK, output.CellView{Ref: strings.ToUpper(params.Ref), Cell: cell})
	}
}

func (api *Controller) UndoAction(c *gin.Context) {
	api.mu.Lock()
	changed := api.engine.Undo()
	history := api.engine.History()
	api.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"changed": changed, "history": history})
}

func (api *Controller) RedoAction(c *gin.Context) {
	api.mu.Lock()
	changed := api.engine.Redo()
	history := api.engine.History()
	api.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"changed": changed, "history": history})
}

// present converts engine results into their serialized form.
func present(result any) any {
	switch v := result.(type) {
	case *models.Grid:
		return output.NewStateView(v, nil)
	case map[models.Address]models.CellStyle:
		out := make(map[string]models.CellStyle, len(v))
		for a, s := range v {
			out[a.String()] = s
		}
		return out
	}
	return result
}

// view builds the state view of the current grid. Callers hold mu.
func (api *Controller) view(styles map[models.Address]models.CellStyle) output.StateView {
	view := output.NewStateView(api.engine.State(), styles)
	if a, ok := api.engine.ActiveCell(); ok {
		view.ActiveCell = a.String()
	}
	return view
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, gridcalc.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, gridcalc.ErrInvalidArgument),
		errors.Is(err, gridcalc.ErrInvalidAddress),
		errors.Is(err, gridcalc.ErrInvalidRange),
		errors.Is(err, gridcalc.ErrOutOfBounds),
		errors.Is(err, gridcalc.ErrInvalidChart):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
