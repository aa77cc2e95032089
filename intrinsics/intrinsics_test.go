package intrinsics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefTo_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(RefTo("DemoVpc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "DemoVpc"}`, string(data))
}

func TestArn_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Arn("ClusterRole"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt": ["ClusterRole", "Arn"]}`, string(data))
}

func TestSub_MarshalJSON(t *testing.T) {
	sub := Sub{String: "arn:${AWS::Partition}:iam::aws:policy/AmazonEKSClusterPolicy"}
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Sub": "arn:${AWS::Partition}:iam::aws:policy/AmazonEKSClusterPolicy"}`, string(data))
}

func TestAZ_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(AZ(2))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Fn::Select"`)
	assert.Contains(t, string(data), `"Fn::GetAZs"`)
	assert.Contains(t, string(data), `2`)
}

func TestTags(t *testing.T) {
	tags := Tags(map[string]string{
		"Name":                   "eks-blueprints-cdk",
		"kubernetes.io/role/elb": "1",
		"Environment":            "demo",
	})

	require.Len(t, tags, 3)

	data, err := json.Marshal(tags)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"Key": "Environment", "Value": "demo"},
		{"Key": "Name", "Value": "eks-blueprints-cdk"},
		{"Key": "kubernetes.io/role/elb", "Value": "1"}
	]`, string(data))
}

func TestTags_Empty(t *testing.T) {
	assert.Empty(t, Tags(nil))
}
