package blueprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/eks-blueprints-go/construct"
)

func newContext(t *testing.T, account string) *ResourceContext {
	t.Helper()
	stack, err := construct.NewStack(construct.NewApp(t.TempDir()), "test", account, "us-west-2")
	require.NoError(t, err)
	return NewResourceContext(stack)
}

func TestGetResource_MemoizedPerContext(t *testing.T) {
	calls := 0
	lazy := GetResource(func(ctx *ResourceContext) (string, error) {
		calls++
		return ctx.Region(), nil
	})

	ctx := newContext(t, "")
	for i := 0; i < 3; i++ {
		v, err := lazy.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "us-west-2", v)
	}
	assert.Equal(t, 1, calls)

	_, err := lazy.Resolve(newContext(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetResource_ErrorNotMemoized(t *testing.T) {
	calls := 0
	lazy := GetResource(func(*ResourceContext) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})

	ctx := newContext(t, "")
	_, err := lazy.Resolve(ctx)
	require.Error(t, err)

	v, err := lazy.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestMap(t *testing.T) {
	role := GetResource(func(ctx *ResourceContext) (*ImportedRole, error) {
		return RoleFromName(ctx.Scope, "PlatformTeamRole", "Admin")
	})
	arn := Map[*ImportedRole, any](role, (*ImportedRole).RoleArn)

	ctx := newContext(t, "111122223333")
	v, err := arn.Resolve(ctx)
	require.NoError(t, err)

	resolved, err := role.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, resolved.Arn, v)
}

func TestMap_PropagatesError(t *testing.T) {
	failing := ResolverFunc[string](func(*ResourceContext) (string, error) {
		return "", errors.New("lookup failed")
	})
	_, err := Map[string, int](failing, func(s string) int { return len(s) }).Resolve(newContext(t, ""))
	assert.EqualError(t, err, "lookup failed")
}

func TestValue(t *testing.T) {
	v, err := StringValue("arn:aws:iam::123:role/x").Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123:role/x", v)
}

func TestRoleFromName(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		expected string
	}{
		{
			name:     "known account",
			account:  "111122223333",
			expected: "arn:${AWS::Partition}:iam::111122223333:role/Admin",
		},
		{
			name:     "environment agnostic",
			expected: "arn:${AWS::Partition}:iam::${AWS::AccountId}:role/Admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t, tt.account)
			role, err := RoleFromName(ctx.Scope, "ClusterAdminRole", "Admin")
			require.NoError(t, err)
			assert.Equal(t, "ClusterAdminRole", role.LogicalID)
			assert.Equal(t, "Admin", role.Name)
			assert.Equal(t, tt.expected, role.Arn.String)
		})
	}
}

func TestRoleFromName_Errors(t *testing.T) {
	ctx := newContext(t, "")

	_, err := RoleFromName(ctx.Scope, "ClusterAdminRole", "")
	assert.Error(t, err)

	_, err = RoleFromName(ctx.Scope, "ClusterAdminRole", "Admin")
	require.NoError(t, err)
	_, err = RoleFromName(ctx.Scope, "ClusterAdminRole", "Admin")
	assert.ErrorIs(t, err, construct.ErrDuplicateID)
}

func TestKubernetesVersion_Semver(t *testing.T) {
	v, err := V1_26.Semver()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major)
	assert.Equal(t, uint64(26), v.Minor)

	_, err = KubernetesVersion("latest").Semver()
	assert.Error(t, err)
}
