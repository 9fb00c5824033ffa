package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"qrCode": fmt.Sprintf("PROMPTPAY|%.2f|%s", req.Amount, uuid.NewString()),
		"amount": req.Amount,
	})
}
