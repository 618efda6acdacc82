package tfcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	target := &Snapshot{
		Blocks: []*Block{
			{
				Kind: KindResource, Type: "aws_instance", Name: "web",
				Address: "aws_instance.web",
				Config: map[string]any{
					"ami":           `"ami-111"`,
					"instance_type": `"t3.micro"`,
					"monitoring":    "true",
				},
			},
			{
				Kind: KindResource, Type: "aws_db_instance", Name: "db",
				Address: "aws_db_instance.db",
				Config:  map[string]any{"engine": `"postgres"`},
			},
			{
				Kind: KindVariable, Name: "region", Address: "var.region",
				Config: map[string]any{"default": `"us-east-1"`},
			},
		},
	}

	source := &Snapshot{
		Blocks: []*Block{
			{
				Kind: KindResource, Type: "aws_instance", Name: "web",
				Address: "aws_instance.web",
				Config: map[string]any{
					"ami":           `"ami-222"`,
					"instance_type": `"t3.micro"`,
					"tags":          `{ env = "test" }`,
				},
			},
			{
				Kind: KindResource, Type: "aws_s3_bucket", Name: "assets",
				Address: "aws_s3_bucket.assets",
				Config:  map[string]any{"bucket": `"assets"`},
			},
			{
				Kind: KindVariable, Name: "region", Address: "var.region",
				Config: map[string]any{"default": `"us-east-1"`},
			},
		},
	}

	comparison := Compare(target, source)

	assert.Equal(t, 1, comparison.Summary.Added)
	assert.Equal(t, 1, comparison.Summary.Deleted)
	assert.Equal(t, 1, comparison.Summary.Modified)
	assert.Equal(t, 1, comparison.Summary.NoChange)
	assert.Equal(t, 4, comparison.Summary.Total)

	added := comparison.Changes["aws_s3_bucket.assets"]
	require.NotNil(t, added)
	assert.Equal(t, ChangeAdded, added.ChangeType)

	deleted := comparison.Changes["aws_db_instance.db"]
	require.NotNil(t, deleted)
	assert.Equal(t, ChangeDeleted, deleted.ChangeType)

	modified := comparison.Changes["aws_instance.web"]
	require.NotNil(t, modified)
	assert.Equal(t, ChangeModified, modified.ChangeType)
	assert.Equal(t, []string{"tags"}, modified.AddedKeys)
	assert.Equal(t, []string{"monitoring"}, modified.RemovedKeys)
	require.Len(t, modified.ModifiedKeys, 1)
	assert.Equal(t, "ami", modified.ModifiedKeys[0].Key)
	assert.Equal(t, `"ami-111"`, modified.ModifiedKeys[0].TargetValue)
	assert.Equal(t, `"ami-222"`, modified.ModifiedKeys[0].SourceValue)

	unchanged := comparison.Changes["var.region"]
	require.NotNil(t, unchanged)
	assert.Equal(t, ChangeNone, unchanged.ChangeType)
}

func TestCompareLocalsPerKey(t *testing.T) {
	target := &Snapshot{
		Blocks: []*Block{
			{
				Kind: KindLocals,
				Config: map[string]any{
					"name_prefix": `"demo"`,
					"env":         `"staging"`,
				},
			},
		},
	}
	source := &Snapshot{
		Blocks: []*Block{
			{
				Kind: KindLocals,
				Config: map[string]any{
					"name_prefix": `"demo"`,
					"env":         `"production"`,
					"owner":       `"platform"`,
				},
			},
		},
	}

	comparison := Compare(target, source)

	assert.Equal(t, ChangeNone, comparison.Changes["local.name_prefix"].ChangeType)
	assert.Equal(t, ChangeModified, comparison.Changes["local.env"].ChangeType)
	assert.Equal(t, ChangeAdded, comparison.Changes["local.owner"].ChangeType)
}

func TestCompareEmptySnapshots(t *testing.T) {
	comparison := Compare(&Snapshot{}, &Snapshot{})
	assert.Equal(t, 0, comparison.Summary.Total)
	assert.Empty(t, comparison.Changes)
}
