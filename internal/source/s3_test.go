package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	listErr error
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	prefix := aws.ToString(params.Prefix)
	for _, key := range keys {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", aws.ToString(params.Key))
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func stagingEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestS3Roots_StagesObjects(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	src := &s3Source{
		client: &fakeS3{objects: map[string]string{
			"docs/a.txt":     "alpha",
			"docs/sub/b.txt": "beta",
		}},
		bucket: "corpus",
		prefix: "docs",
	}

	roots, err := src.Roots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)

	data, err := os.ReadFile(filepath.Join(roots[0], "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "alpha", string(data))
	data, err = os.ReadFile(filepath.Join(roots[0], "sub", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "beta", string(data))
}

func TestS3Roots_RemovesPreviousStaging(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	src := &s3Source{
		client: &fakeS3{objects: map[string]string{"docs/a.txt": "alpha"}},
		bucket: "corpus",
		prefix: "docs",
	}

	first, err := src.Roots(context.Background())
	require.NoError(t, err)
	second, err := src.Roots(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first[0], second[0])

	_, err = os.Stat(first[0])
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(second[0])
	require.NoError(t, err)
	require.Len(t, stagingEntries(t, tmp), 1)
}

func TestS3Roots_ListFailureLeavesNothingBehind(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	src := &s3Source{
		client: &fakeS3{listErr: fmt.Errorf("access denied")},
		bucket: "corpus",
	}

	_, err := src.Roots(context.Background())
	require.ErrorContains(t, err, "access denied")
	require.Empty(t, stagingEntries(t, tmp))
}
