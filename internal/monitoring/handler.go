package monitoring

import (
	"net/http"
	"time"

	"github.com/banking-txn-simulator/internal/simulator/service"
	"github.com/gin-gonic/gin"
)

// StatsProvider exposes the simulation loop to the HTTP surface
type StatsProvider interface {
	State() service.State
	Stats() service.Stats
}

// Response represents a standard API response
type Response struct {
	Data          any        `json:"data,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, &Response{Data: data, CorrelationID: GetCorrelationID(c)})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: GetCorrelationID(c),
	})
}

// StatsHandler serves the loop state and counters
type StatsHandler struct {
	stats StatsProvider
}

func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Health reports 200 while the loop runs and 503 otherwise
func (h *StatsHandler) Health(c *gin.Context) {
	state := h.stats.State()
	status := http.StatusOK
	label := "ok"
	if state != service.StateRunning {
		status = http.StatusServiceUnavailable
		label = "unavailable"
	}
	c.JSON(status, gin.H{"status": label, "state": state.String(), "timestamp": time.Now().UTC()})
}

// Stats handles GET /api/v1/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	RespondWithData(c, http.StatusOK, h.stats.Stats())
}
