package dbutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalize_RewritesLimitClause(t *testing.T) {
	query, args := Finalize(
		"SELECT id FROM contracts WHERE vendor=? ORDER BY ctime DESC LIMIT ?,?",
		[]interface{}{"acme", 40, 20},
	)
	require.Equal(t, "SELECT id FROM contracts WHERE vendor=$1 ORDER BY ctime DESC LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"acme", 20, 40}, args)
}

func TestFinalize_NoLimitClause(t *testing.T) {
	query, args := Finalize(
		"UPDATE contracts SET vendor=? WHERE id=?",
		[]interface{}{"acme", "c1"},
	)
	require.Equal(t, "UPDATE contracts SET vendor=$1 WHERE id=$2", query)
	require.Equal(t, []interface{}{"acme", "c1"}, args)
}
