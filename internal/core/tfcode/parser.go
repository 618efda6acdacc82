// Package tfcode parses Terraform configuration into blocks, resolves their
// canonical addresses and extracts the dependency edges between them. The
// output feeds the agent's context window, so it favors a compact, robust
// summary over full expression evaluation.
package tfcode

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// ignoredDirs are never walked when collecting .tf files
var ignoredDirs = map[string]bool{
	".terraform": true,
	".git":       true,
	".worktrees": true,
}

// ParseDirectory parses every .tf file under infraRoot into a Snapshot.
// Files that fail to parse are recorded in Snapshot.Errors and skipped;
// parsing never aborts the whole snapshot.
func ParseDirectory(infraRoot string) (*Snapshot, error) {
	info, err := os.Stat(infraRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("infrastructure directory not found: %s", infraRoot)
	}

	snapshot := &Snapshot{}

	err = filepath.WalkDir(infraRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != infraRoot && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".tf") {
			return nil
		}

		relPath, err := filepath.Rel(infraRoot, path)
		if err != nil {
			return err
		}

		blocks, parseErr := ParseFile(path, relPath)
		if parseErr != nil {
			snapshot.Errors = append(snapshot.Errors, ParseError{
				File:    relPath,
				Message: parseErr.Error(),
			})
			return nil
		}
		snapshot.Blocks = append(snapshot.Blocks, blocks...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", infraRoot, err)
	}

	return snapshot, nil
}

// ParseFile parses one .tf file. relPath is the file's path relative to the
// infrastructure root and is recorded on every block.
func ParseFile(path, relPath string) ([]*Block, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", path, diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type in %s", path)
	}

	groupPath := filepath.Dir(relPath)
	if groupPath == "." {
		groupPath = ""
	}
	fileName := strings.TrimSuffix(filepath.Base(relPath), ".tf")

	var blocks []*Block
	for _, blk := range body.Blocks {
		parsed := &Block{
			Kind:      BlockKind(blk.Type),
			Config:    bodyToConfig(blk.Body, src),
			File:      relPath,
			FileName:  fileName,
			GroupPath: groupPath,
		}

		switch parsed.Kind {
		case KindResource, KindData:
			if len(blk.Labels) >= 2 {
				parsed.Type = blk.Labels[0]
				parsed.Name = blk.Labels[1]
			}
		case KindModule, KindOutput, KindVariable, KindProvider:
			if len(blk.Labels) >= 1 {
				parsed.Name = blk.Labels[0]
			}
		}
		parsed.Address = blockAddress(parsed)

		blocks = append(blocks, parsed)
	}

	return blocks, nil
}

// bodyToConfig flattens an HCL body into a nested map. Attribute values
// become the raw expression source text; nested blocks recurse. Repeated
// nested blocks of the same type collect into a slice.
func bodyToConfig(body *hclsyntax.Body, src []byte) map[string]any {
	config := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		config[name] = exprText(attr.Expr, src)
	}

	for _, blk := range body.Blocks {
		nested := bodyToConfig(blk.Body, src)
		key := blk.Type
		if len(blk.Labels) > 0 {
			key = blk.Type + "." + strings.Join(blk.Labels, ".")
		}
		switch existing := config[key].(type) {
		case nil:
			config[key] = nested
		case []any:
			config[key] = append(existing, nested)
		default:
			config[key] = []any{existing, nested}
		}
	}

	return config
}

// exprText returns the raw source text of an expression
func exprText(expr hclsyntax.Expression, src []byte) string {
	rng := expr.Range()
	if rng.Start.Byte < 0 || rng.End.Byte > len(src) || rng.Start.Byte > rng.End.Byte {
		return ""
	}
	return string(src[rng.Start.Byte:rng.End.Byte])
}
