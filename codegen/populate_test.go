package codegen

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaihuLight/partecl-codegen/declaration"
	"github.com/TaihuLight/partecl-codegen/naming"
)

func newTestGenerator(diagnostics bool) (*Generator, *bytes.Buffer, *bytes.Buffer) {
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	logger := zerolog.New(logs)
	g := New(out, Options{
		Names:       naming.Defaults(),
		Diagnostics: diagnostics,
		Logger:      &logger,
	})
	return g, out, logs
}

func TestPopulateInput(t *testing.T) {
	tests := []struct {
		name string
		decl declaration.Declaration
		src  ArgSource
		pos  int
		want string
	}{
		{
			name: "int scalar on command line",
			decl: declaration.Declaration{Name: "v", Type: "int"},
			src:  CommandLine,
			pos:  2,
			want: "  if(argc >= 4)\n    input->v = atoi(args[3]);\n",
		},
		{
			name: "int scalar on stdin",
			decl: declaration.Declaration{Name: "v", Type: "int"},
			src:  Stdin,
			pos:  0,
			want: "  if(stdinc >= 1)\n    input->v = atoi(stdins[0]);\n",
		},
		{
			name: "bool parsed as int",
			decl: declaration.Declaration{Name: "flag", Type: "bool"},
			src:  CommandLine,
			pos:  1,
			want: "  if(argc >= 3)\n    input->flag = atoi(args[2]);\n",
		},
		{
			name: "char takes first byte",
			decl: declaration.Declaration{Name: "c", Type: "char"},
			src:  Stdin,
			pos:  0,
			want: "  if(stdinc >= 1)\n    input->c = *stdins[0];\n",
		},
		{
			name: "int array on command line",
			decl: declaration.Declaration{Name: "arr", Type: "int", IsArray: true, Size: 4},
			src:  CommandLine,
			pos:  0,
			want: "  for(int i = 0; i < 4; i++)\n    input->arr[i] = atoi(args[i+1]);\n",
		},
		{
			name: "string array on stdin",
			decl: declaration.Declaration{Name: "names", Type: "char *", IsArray: true, Size: 2},
			src:  Stdin,
			pos:  3,
			want: "  for(int i = 0; i < 2; i++)\n" +
				"  {\n" +
				"    input->names[i] = (char *)malloc(sizeof(char)*(1+strlen(stdins[i+3])));\n" +
				"    strcpy(input->names[i], stdins[i+3]);\n" +
				"  }\n",
		},
		{
			name: "unknown type falls back to int",
			decl: declaration.Declaration{Name: "f", Type: "float"},
			src:  CommandLine,
			pos:  0,
			want: "  if(argc >= 2)\n    input->f = atoi(args[1]);\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, out, _ := newTestGenerator(false)
			g.PopulateInput(tt.decl, tt.src, tt.pos)
			assert.NoError(t, g.Err())
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestPopulateInputsScalar(t *testing.T) {
	g, out, _ := newTestGenerator(false)
	err := g.PopulateInputs([]declaration.Declaration{{Name: "x", Type: "int"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, `void populate_inputs(struct input *input, int argc, char** args, int stdinc, char** stdins)
{
  input->test_case_num = atoi(args[0]);
  input->argc = argc;
  if(argc >= 2)
    input->x = atoi(args[1]);
}
`, out.String())
}

func TestPopulateInputsArrayHasNoGuard(t *testing.T) {
	g, out, _ := newTestGenerator(false)
	err := g.PopulateInputs([]declaration.Declaration{
		{Name: "arr", Type: "int", IsArray: true, Size: 4},
	}, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "  for(int i = 0; i < 4; i++)\n    input->arr[i] = atoi(args[i+1]);\n")
	assert.NotContains(t, out.String(), "if(argc")
}

func TestPopulateInputsCString(t *testing.T) {
	g, out, _ := newTestGenerator(false)
	err := g.PopulateInputs([]declaration.Declaration{{Name: "s", Type: "char*"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `  if(argc >= 2)
  {
    input->s = (char *)malloc(sizeof(char)*(1+strlen(args[1])));
    strcpy(input->s, args[1]);
  }
`)
}

func TestPopulateInputsOffsets(t *testing.T) {
	inputs := []declaration.Declaration{
		{Name: "a", Type: "int"},
		{Name: "arr", Type: "int", IsArray: true, Size: 3},
		{Name: "b", Type: "char"},
	}
	stdin := []declaration.Declaration{
		{Name: "n", Type: "int"},
		{Name: "m", Type: "int", IsArray: true, Size: 2},
		{Name: "k", Type: "unsigned int"},
	}
	g, out, _ := newTestGenerator(false)
	require.NoError(t, g.PopulateInputs(inputs, stdin))

	assert.Equal(t, `void populate_inputs(struct input *input, int argc, char** args, int stdinc, char** stdins)
{
  input->test_case_num = atoi(args[0]);
  input->argc = argc;
  if(argc >= 2)
    input->a = atoi(args[1]);
  for(int i = 0; i < 3; i++)
    input->arr[i] = atoi(args[i+2]);
  if(argc >= 4)
    input->b = *args[3];
  if(stdinc >= 1)
    input->n = atoi(stdins[0]);
  for(int i = 0; i < 2; i++)
    input->m[i] = atoi(stdins[i+1]);
  if(stdinc >= 3)
    input->k = atoi(stdins[2]);
}
`, out.String())
}

func TestPopulateInputsShapesAreTotal(t *testing.T) {
	shapes := []string{
		"    input->v = atoi(args[1]);\n",
		"    input->v = (char *)malloc(",
		"    input->v = *args[1];\n",
	}
	for _, typ := range []string{"int", "bool", "char *", "char*", "char", "float", "double",
		"struct point", "", "const char *", "_Bool", "uint8_t", "long"} {
		g, out, _ := newTestGenerator(false)
		g.PopulateInput(declaration.Declaration{Name: "v", Type: typ}, CommandLine, 0)
		matched := 0
		for _, s := range shapes {
			if strings.Contains(out.String(), s) {
				matched++
			}
		}
		assert.Equal(t, 1, matched, "type %q produced:\n%s", typ, out.String())
	}
}

func TestPopulateInputsAdvisory(t *testing.T) {
	decls := []declaration.Declaration{{Name: "f", Type: "float"}}

	g, out, logs := newTestGenerator(true)
	require.NoError(t, g.PopulateInputs(decls, nil))
	assert.Contains(t, logs.String(), "unhandled input type, defaulting to int parsing")
	assert.Contains(t, logs.String(), `"type":"float"`)
	assert.Contains(t, logs.String(), `"field":"f"`)
	assert.Equal(t, 1, g.Summary().Advisories)

	gQuiet, outQuiet, logsQuiet := newTestGenerator(false)
	require.NoError(t, gQuiet.PopulateInputs(decls, nil))
	assert.Empty(t, logsQuiet.String())
	assert.Equal(t, out.String(), outQuiet.String())
	assert.Equal(t, 1, gQuiet.Summary().Advisories)
}

type failingWriter struct {
	left int
}

var errSinkClosed = errors.New("sink closed")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.left <= 0 {
		return 0, errSinkClosed
	}
	w.left--
	return len(p), nil
}

func TestPopulateInputsWriteError(t *testing.T) {
	w := &failingWriter{left: 2}
	g := New(w, Options{Names: naming.Defaults()})
	err := g.PopulateInputs([]declaration.Declaration{{Name: "x", Type: "int"}}, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errSinkClosed))
	assert.Equal(t, err, g.Err())
	/* nothing written after the first failure */
	assert.Equal(t, 0, w.left)
}
