package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilderBuildsJoinedClauseWithPositionalArgs(t *testing.T) {
	var w whereBuilder
	w.add("account_id = " + w.bind("a1"))
	w.add("event_status = " + w.bind("SUCCESS"))

	assert.Equal(t, "WHERE account_id = $1 AND event_status = $2", w.SQL())
	assert.Equal(t, []interface{}{"a1", "SUCCESS"}, w.Args())
}

func TestWhereBuilderEmptyYieldsNoClause(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.SQL())
	assert.True(t, w.Empty())
}
