package roundtrip

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sigkit/corpus"
	"github.com/dhamidi/sigkit/internal/classtest"
	"github.com/dhamidi/sigkit/sig"
)

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify(sig.KindField, "Ljava/util/List<+Ljava/lang/Number;>;"))
	assert.NoError(t, Verify(sig.KindMethod, "<T:Ljava/lang/Object;>([TT;)V^TE;"))
	assert.NoError(t, Verify(sig.KindClass, "Ljava/lang/Object;"))

	err := Verify(sig.KindField, "Ljava/util/List<")
	require.Error(t, err)
	assert.ErrorIs(t, err, sig.ErrMalformedSignature)
	assert.NotErrorIs(t, err, ErrMismatch)

	err = Verify(sig.KindField, "[[[[I", sig.WithMaxDepth(2))
	assert.ErrorIs(t, err, sig.ErrMalformedSignature)
}

func TestMismatchError(t *testing.T) {
	err := error(&MismatchError{Kind: sig.KindField, Want: "a", Got: "b"})
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Equal(t, `field signature "a" was written back as "b"`, err.Error())
}

func writeJar(t *testing.T, path string, classes map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, data := range classes {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func genericClass(name string) []byte {
	return classtest.New().Build(name, "java/lang/Object",
		"<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Runnable;",
		[]classtest.Member{
			{Name: "map", Descriptor: "Ljava/util/Map;", Signature: "Ljava/util/Map<TK;Ljava/util/List<+TV;>;>;"},
			{Name: "size", Descriptor: "I"},
		},
		[]classtest.Member{
			{Name: "get", Descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;", Signature: "(TK;)TV;"},
			{Name: "run", Descriptor: "()V"},
		},
	)
}

func TestCheckPaths(t *testing.T) {
	dir := t.TempDir()
	writeJar(t, filepath.Join(dir, "lib.jar"), map[string][]byte{
		"a/First.class":  genericClass("a/First"),
		"a/Second.class": genericClass("a/Second"),
		"a/Broken.class": []byte("garbage"),
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Third.class"), genericClass("Third"), 0o644))

	c := New(Options{Workers: 3})
	report, err := c.CheckPaths(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Classes)
	assert.Equal(t, 9, report.Signatures)
	assert.Equal(t, map[string]int{"class": 3, "field": 3, "method": 3}, report.ByKind)
	assert.Equal(t, 3, report.Distinct, "each distinct signature is counted once")
	assert.Equal(t, 6, report.CacheHits)
	assert.Empty(t, report.Failures)
	require.Len(t, report.ClassErrors, 1)
	assert.Contains(t, report.ClassErrors[0].Source, "a/Broken.class")
	assert.False(t, report.OK())
	assert.True(t, report.AtLeast(9))
	assert.False(t, report.AtLeast(10))
}

func TestCheckPathsRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	bad := classtest.New().Build("p/Bad", "java/lang/Object", "", []classtest.Member{
		{Name: "f", Descriptor: "Ljava/util/List;", Signature: "Ljava/util/List<TT;"},
		{Name: "g", Descriptor: "Ljava/util/List;", Signature: "Ljava/util/List<TT;>;"},
	}, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Bad.class"), bad, 0o644))

	report, err := New(Options{Workers: 1}).CheckPaths(context.Background(), filepath.Join(dir, "Bad.class"))
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	f := report.Failures[0]
	assert.Equal(t, "p/Bad", f.Class)
	assert.Equal(t, "f", f.Member)
	assert.Equal(t, "field", f.Kind)
	assert.Equal(t, "Ljava/util/List<TT;", f.Signature)
	assert.Empty(t, f.Got)
	assert.Contains(t, f.Error, "malformed signature")
}

func TestCheckSignatures(t *testing.T) {
	items := []Item{
		{Source: "a.sigs:1", Kind: sig.KindField, Text: "TT;"},
		{Source: "a.sigs:2", Kind: sig.KindField, Text: "TT;"},
		{Source: "a.sigs:3", Kind: sig.KindMethod, Text: "()V"},
		{Source: "a.sigs:4", Kind: sig.KindMethod, Text: "(I"},
		{Source: "a.sigs:5", Kind: sig.KindMethod, Text: "(I"},
	}
	c := New(Options{Workers: 1, CacheSize: 8})
	report, err := c.CheckSignatures(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Signatures)
	assert.Equal(t, 3, report.Distinct)
	assert.Equal(t, 2, report.CacheHits)
	require.Len(t, report.Failures, 2, "a memoised failure is reported for every occurrence")
	assert.Equal(t, "a.sigs:4", report.Failures[0].Source)
	assert.Equal(t, "a.sigs:5", report.Failures[1].Source)

	again, err := c.CheckSignatures(context.Background(), items[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, again.CacheHits, "the memo survives between runs")
}

func TestCheckSignaturesDistinctUnderContention(t *testing.T) {
	var items []Item
	for i := range 500 {
		items = append(items,
			Item{Source: fmt.Sprintf("a.sigs:%d", 2*i+1), Kind: sig.KindField, Text: "Ljava/util/List<TT;>;"},
			Item{Source: fmt.Sprintf("a.sigs:%d", 2*i+2), Kind: sig.KindMethod, Text: "<T:Ljava/lang/Object;>(TT;)TT;"},
		)
	}
	report, err := New(Options{Workers: 16}).CheckSignatures(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1000, report.Signatures)
	assert.Equal(t, 2, report.Distinct)
	assert.Equal(t, 998, report.CacheHits)
	assert.True(t, report.OK())
}

func TestCheckPathsWalkError(t *testing.T) {
	_, err := New(Options{}).CheckPaths(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCheckSignaturesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items := make([]Item, 1000)
	for i := range items {
		items[i] = Item{Kind: sig.KindField, Text: "TT;"}
	}
	report, err := New(Options{Workers: 1}).CheckSignatures(ctx, items)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, report.Signatures, len(items))
}

// TestJDK exercises the whole platform library of the JDK in JAVA_HOME.
func TestJDK(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping JDK walk in short mode")
	}
	javaHome := os.Getenv("JAVA_HOME")
	if javaHome == "" {
		t.Skip("JAVA_HOME is not set")
	}
	paths, err := corpus.DefaultPaths(javaHome)
	if err != nil {
		t.Skip(err)
	}
	report, err := New(Options{}).CheckPaths(context.Background(), paths...)
	require.NoError(t, err)
	for _, f := range report.Failures {
		t.Errorf("%s %s.%s: %s", f.Source, f.Class, f.Member, f.Error)
	}
	assert.Empty(t, report.ClassErrors)
	assert.True(t, report.AtLeast(10000), "only %d signatures found", report.Signatures)
}
