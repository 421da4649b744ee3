package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/shared"
)

// pathID parses a positive integer path parameter and answers 400 otherwise
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(shared.ErrInvalidInput{Field: name, Reason: "must be a positive integer"})
		RespondBadRequest(c, "Invalid "+name+": "+raw)
		return 0, false
	}
	return id, true
}

func withReference(reference string) []account_manager.OperationOption {
	if reference == "" {
		return nil
	}
	return []account_manager.OperationOption{account_manager.WithReference(reference)}
}
