package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/katalvlaran/ringloop/closure"
	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
	"github.com/katalvlaran/ringloop/looptable"
)

// MaxRequestBytes bounds closure request bodies.
const MaxRequestBytes = 1 << 20

// UnknownResidue types loop residues when a request carries no sequence.
const UnknownResidue = "UNK"

// Tables is what the API needs from a table library. *looptable.Library
// satisfies it.
type Tables interface {
	closure.TableSource
	Loaded() []looptable.TableInfo
}

// API holds dependencies for API handlers, primarily the table library.
type API struct {
	tables Tables
	logger *log.Logger
}

// NewAPI creates a new API handler structure. logger may be nil.
func NewAPI(tables Tables, logger *log.Logger) *API {
	return &API{tables: tables, logger: logger}
}

// SetupRoutes defines all the API routes for the loop closure service.
func SetupRoutes(router *gin.Engine, tables Tables, logger *log.Logger) {
	apiHandler := NewAPI(tables, logger)

	router.Use(RequestIDMiddleware())

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Table inspection routes
	tableRoutes := router.Group("/tables")
	{
		tableRoutes.GET("", apiHandler.ListTablesHandler)        // Tables loaded so far
		tableRoutes.GET("/:length", apiHandler.GetTableHandler) // Load or build one table
	}

	// Closure route
	router.POST("/closures", RequestSizeLimitMiddleware(MaxRequestBytes), apiHandler.CloseLoopHandler)
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "ringloop",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}

// ListTablesHandler lists the tables currently held in memory.
func (api *API) ListTablesHandler(c *gin.Context) {
	tables := api.tables.Loaded()
	c.JSON(http.StatusOK, gin.H{
		"tables": tables,
		"count":  len(tables),
	})
}

// TableDetail is a table summary plus its per-bin population.
type TableDetail struct {
	looptable.TableInfo
	Bins []int `json:"bins"`
}

// GetTableHandler returns the table of the requested chain length, loading
// or building it if necessary.
func (api *API) GetTableHandler(c *gin.Context) {
	raw := c.Param("length")
	n, err := strconv.Atoi(raw)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidLength,
			"Chain length '"+raw+"' is not a number")
		return
	}

	t, err := api.tables.Table(n)
	if err != nil {
		api.sendTableError(c, err)
		return
	}

	detail := TableDetail{TableInfo: looptable.Describe(t), Bins: make([]int, looptable.BinCount)}
	for b := range detail.Bins {
		detail.Bins[b] = t.BinSize(b)
	}
	c.JSON(http.StatusOK, detail)
}

// AnchorRequest is a chain terminus: the CA position, the CA→C direction and
// the normal of the N-CA-C plane.
type AnchorRequest struct {
	Position  geom.Vec3 `json:"position"`
	Direction geom.Vec3 `json:"direction"`
	Normal    geom.Vec3 `json:"normal"`
}

// Frame converts the anchor into a fragment.Frame.
func (a AnchorRequest) Frame() fragment.Frame {
	return fragment.Frame{Origin: a.Position, Direction: a.Direction, Normal: a.Normal}
}

// ClosureRequest asks for Gap residues between Start and End.
type ClosureRequest struct {
	Start    *AnchorRequest `json:"start"`
	End      *AnchorRequest `json:"end"`
	Gap      int            `json:"gap"`
	Sequence []string       `json:"sequence,omitempty"`
	Num      int            `json:"num,omitempty"`
	Depth    int            `json:"depth,omitempty"`
}

// Validate reports every problem with the request.
func (r ClosureRequest) Validate() []ErrorDetail {
	var details []ErrorDetail
	if r.Start == nil {
		details = append(details, ErrorDetail{Field: "start", Message: "start anchor is required"})
	}
	if r.End == nil {
		details = append(details, ErrorDetail{Field: "end", Message: "end anchor is required"})
	}
	if r.Gap < 1 || r.Gap+1 > looptable.MaxChainLength {
		details = append(details, ErrorDetail{Field: "gap",
			Message: fmt.Sprintf("gap must be between 1 and %d", looptable.MaxChainLength-1)})
	}
	if len(r.Sequence) > 0 && len(r.Sequence) != r.Gap {
		details = append(details, ErrorDetail{Field: "sequence",
			Message: fmt.Sprintf("sequence has %d residues, gap is %d", len(r.Sequence), r.Gap)})
	}
	if r.Num < 0 || r.Num > closure.MaxNum {
		details = append(details, ErrorDetail{Field: "num",
			Message: fmt.Sprintf("num must be between 0 and %d", closure.MaxNum)})
	}
	if r.Depth < 0 || r.Depth > closure.MaxDepth {
		details = append(details, ErrorDetail{Field: "depth",
			Message: fmt.Sprintf("depth must be between 0 and %d", closure.MaxDepth)})
	}

	return details
}

// ClosureResponse carries the loops found for a ClosureRequest.
type ClosureResponse struct {
	RequestID string         `json:"request_id"`
	Gap       int            `json:"gap"`
	Count     int            `json:"count"`
	Loops     []closure.Loop `json:"loops"`
	Took      int64          `json:"took_ms"`
}

// CloseLoopHandler closes the gap described by a ClosureRequest.
func (api *API) CloseLoopHandler(c *gin.Context) {
	var req ClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if details := req.Validate(); len(details) > 0 {
		SendValidationError(c, details...)
		return
	}

	seq := req.Sequence
	if len(seq) == 0 {
		seq = make([]string, req.Gap)
		for i := range seq {
			seq[i] = UnknownResidue
		}
	}
	defaults := closure.DefaultOptions()
	num, depth := req.Num, req.Depth
	if num == 0 {
		num = defaults.Num
	}
	if depth == 0 {
		depth = defaults.Depth
	}

	start := time.Now()
	solver := closure.NewSolver(api.tables, closure.WithBreadth(num, depth), closure.WithLogger(api.logger))
	cands, err := solver.Solve(req.Start.Frame(), req.End.Frame(), req.Gap)
	if err != nil {
		switch {
		case errors.Is(err, fragment.ErrDegenerateFrame):
			SendError(c, http.StatusBadRequest, ErrorCodeDegenerateAnchor, err.Error())
		case errors.Is(err, looptable.ErrTableMissing):
			SendTableNotFoundError(c, err)
		default:
			SendError(c, http.StatusInternalServerError, ErrorCodeClosureFailed, "Loop closure failed: "+err.Error())
		}
		return
	}

	loops := make([]closure.Loop, 0, len(cands))
	for _, cand := range cands {
		loop, err := closure.CalculateLoop(cand, seq)
		if err != nil {
			SendInternalError(c, "loop assembly", err)
			return
		}
		loops = append(loops, loop)
	}

	c.JSON(http.StatusOK, ClosureResponse{
		RequestID: c.GetString(requestIDKey),
		Gap:       req.Gap,
		Count:     len(loops),
		Loops:     loops,
		Took:      time.Since(start).Milliseconds(),
	})
}

// sendTableError maps library errors onto HTTP statuses.
func (api *API) sendTableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, looptable.ErrBadChainLength):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidLength, err.Error())
	case errors.Is(err, looptable.ErrTableMissing):
		SendTableNotFoundError(c, err)
	default:
		SendInternalError(c, "table load", err)
	}
}
