package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
)

func newTestOracle(rules map[string]string) (*Oracle, *mockStore) {
	ms := &mockStore{rules: map[string]map[string]string{"perm:alice@example.com": rules}}
	return NewOracle(ms, "perm:"), ms
}

func TestFilterByUserEmail_LongestPrefixWins(t *testing.T) {
	o, _ := newTestOracle(map[string]string{
		"Engineering":                   AccessRead,
		"Engineering > Infra":           AccessDeny,
		"Engineering > Infra > Runbook": AccessRead,
	})

	in := []document.Result{
		doc("1", "Engineering > Meetings"),
		doc("2", "Engineering > Infra > Secrets"),
		doc("3", "Engineering > Infra > Runbook > Deploy"),
		doc("4", "HR > Payroll"),
		doc("5", "engineering > onboarding"),
		doc("6", "Engineering2 > Other"),
	}
	out, err := o.FilterByUserEmail(context.Background(), in, "Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "5"}, document.IDs(out))
}

func TestFilterByUserEmail_Wildcard(t *testing.T) {
	o, _ := newTestOracle(map[string]string{
		"*":  AccessRead,
		"HR": AccessDeny,
	})
	out, err := o.FilterByUserEmail(context.Background(),
		[]document.Result{doc("1", "Engineering"), doc("2", "HR > Payroll"), doc("3", "")}, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, document.IDs(out))
}

func TestFilterByUserEmail_EqualLengthDenyWins(t *testing.T) {
	rules := []rule{
		{segments: []string{"Eng"}, allow: true},
		{segments: []string{"eng"}, allow: false},
	}
	assert.False(t, canRead(rules, []string{"Eng", "X"}))
}

func TestFilterByUserEmail_UnknownValuesGrantNothing(t *testing.T) {
	o, _ := newTestOracle(map[string]string{"Engineering": "WRITE"})
	out, err := o.FilterByUserEmail(context.Background(), []document.Result{doc("1", "Engineering")}, "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFilterByUserEmail_UnknownUser(t *testing.T) {
	o, ms := newTestOracle(nil)
	_, err := o.FilterByUserEmail(context.Background(), []document.Result{doc("1", "x")}, "bob@example.com")
	require.ErrorIs(t, err, domain.ErrUnknownUser)
	assert.Equal(t, []string{"perm:bob@example.com"}, ms.keys)
}

func TestFilterByUserEmail_EmptyEmail(t *testing.T) {
	o, ms := newTestOracle(nil)
	_, err := o.FilterByUserEmail(context.Background(), nil, "  ")
	require.ErrorIs(t, err, domain.ErrUnknownUser)
	assert.Empty(t, ms.keys)
}

func TestFilterByUserEmail_StoreError(t *testing.T) {
	ms := &mockStore{err: errors.New("conn reset")}
	o := NewOracle(ms, "perm:")
	_, err := o.FilterByUserEmail(context.Background(), []document.Result{doc("1", "x")}, "alice@example.com")
	require.ErrorIs(t, err, domain.ErrPermissionOracle)
}

func TestFilterByUserEmail_SubsetAndIdempotent(t *testing.T) {
	o, _ := newTestOracle(map[string]string{"A": AccessRead, "A > B": AccessDeny})
	in := []document.Result{doc("1", "A"), doc("2", "A > B"), doc("3", "A > C"), doc("4", "Z")}

	once, err := o.FilterByUserEmail(context.Background(), in, "alice@example.com")
	require.NoError(t, err)
	twice, err := o.FilterByUserEmail(context.Background(), once, "alice@example.com")
	require.NoError(t, err)

	assert.Subset(t, document.IDs(in), document.IDs(once))
	assert.Equal(t, document.IDs(once), document.IDs(twice))
}
