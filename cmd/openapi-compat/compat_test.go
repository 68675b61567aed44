package main

import (
	"os"
	"path/filepath"
	"testing"

	"bloglist/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDoc = `
paths:
  /blogs:
    get:
      responses:
        200:
          description: OK
    post:
      responses:
        "201":
          description: Created
        "401":
          description: Unauthorized
  /legacy:
    get:
      responses:
        "200":
          description: OK
`

const revisionDoc = `
paths:
  /blogs:
    get:
      responses:
        "200":
          description: OK
    post:
      responses:
        "201":
          description: Created
`

func TestParseSpec_StringifiesStatusCodes(t *testing.T) {
	spec, err := parseSpec([]byte(baseDoc))
	require.NoError(t, err)
	assert.Contains(t, spec.Paths["/blogs"]["get"].Responses, "200")
	assert.Contains(t, spec.Paths["/blogs"]["post"].Responses, "401")
}

func TestParseSpec_MissingPaths(t *testing.T) {
	_, err := parseSpec([]byte("swagger: \"2.0\"\n"))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	base, err := parseSpec([]byte(baseDoc))
	require.NoError(t, err)
	revision, err := parseSpec([]byte(revisionDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"removed path: /legacy",
		"removed response code: POST /blogs -> 401",
	}, compare(base, revision))
	assert.Empty(t, compare(revision, revision))
}

func TestCheckRequired(t *testing.T) {
	revision, err := parseSpec([]byte(revisionDoc))
	require.NoError(t, err)

	issues := checkRequired(revision, []requiredOperation{
		{"get", "/blogs", []string{"200"}},
		{"post", "/blogs", []string{"201", "401"}},
		{"post", "/login", []string{"200"}},
	})
	assert.Equal(t, []string{
		"missing contract operation: POST /login",
		"missing contract response: POST /blogs -> 401",
	}, issues)
}

func TestEmbeddedDocumentMeetsContract(t *testing.T) {
	spec, err := parseSpec(docs.YAML())
	require.NoError(t, err)
	assert.Empty(t, checkRequired(spec, contractOperations))
}

func TestLoadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(revisionDoc), 0o600))

	spec, err := loadSpec(path)
	require.NoError(t, err)
	assert.Len(t, spec.Paths, 1)

	_, err = loadSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
