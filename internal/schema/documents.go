package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"balance-schema-service/internal/coin"
)

//go:embed schemas/*.json
var builtinDocuments embed.FS

// Document kinds with built-in schema documents and typed checks.
const (
	KindBalance     = "balance"
	KindSupply      = "supply"
	KindAllBalances = "all_balances"
)

var builtinKinds = []struct {
	kind  string
	file  string
	check checkFunc
}{
	{KindBalance, "schemas/balance_response.json", checkSingleCoinResponse},
	{KindSupply, "schemas/supply_response.json", checkSingleCoinResponse},
	{KindAllBalances, "schemas/all_balance_response.json", checkCoinListResponse},
}

// FormatUint128 is the JSON Schema format name for decimal uint128 strings.
const FormatUint128 = "uint128"

func init() {
	jsonschema.Formats[FormatUint128] = isUint128
}

// isUint128 follows the format convention of ignoring non-string instances.
func isUint128(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	_, err := coin.ParseUint128(s)
	return err == nil
}

func compileDocument(name string, data []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true
	if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return s, nil
}

// readDocumentsDir returns the *.json files in dir keyed by kind (file name without extension).
func readDocumentsDir(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	docs := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		docs[strings.TrimSuffix(e.Name(), ".json")] = data
	}
	return docs, nil
}

// schemaViolations flattens a jsonschema error into leaf violations sorted by path.
func schemaViolations(err error) []Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Path: "", Reason: err.Error(), Code: CodeSchema}}
	}
	var out []Violation
	collectLeaves(ve, &out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Violation{Path: ve.InstanceLocation, Reason: ve.Message, Code: CodeSchema})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}
