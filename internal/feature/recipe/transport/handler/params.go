package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/shared/apperr"
)

// parsePathID はURLの{id}を読み取ります。数値でなければnotFoundを返します。
func parsePathID(c *gin.Context, notFound error) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return uint(id), nil
}

// parseIDList はカンマ区切りの整数IDを読み取ります。空文字列はnilです。
func parseIDList(field, raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, apperr.FieldValidation(field, "must be a comma separated list of integer ids")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// parseAssignedOnly は assigned_only を解釈します。整数（0以外が真）と真偽値の両方を受け付けます。
func parseAssignedOnly(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n != 0, nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b, nil
	}
	return false, apperr.FieldValidation("assigned_only", "must be an integer or a boolean")
}
