package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePublisher(t *testing.T) {
	dir := t.TempDir()
	p := &FilePublisher{Dir: dir}

	loc, err := p.Publish(context.Background(), "lerobot/pusht.html", []byte("<html>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lerobot", "pusht.html"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestFilePublisher_RejectsEscapes(t *testing.T) {
	p := &FilePublisher{Dir: t.TempDir()}
	for _, name := range []string{"", ".", "..", "../x.html", "/etc/passwd", `..\x.html`} {
		_, err := p.Publish(context.Background(), name, nil, "")
		assert.Error(t, err, name)
	}
}

func TestFilePublisher_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&FilePublisher{Dir: t.TempDir()}).Publish(ctx, "a.json", nil, "")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher(t *testing.T) {
	fake := &fakeS3{}
	p := NewS3Publisher(fake, "reports", "/daily/")

	loc, err := p.Publish(context.Background(), "pusht.json", []byte(`{}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/daily/pusht.json", loc)
	assert.Equal(t, "reports", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "daily/pusht.json", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/json", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(2), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, `{}`, string(fake.body))
}

func TestS3Publisher_Error(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	_, err := NewS3Publisher(fake, "reports", "").Publish(context.Background(), "a.json", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, "a.json", aws.ToString(fake.input.Key))
}

func TestFor(t *testing.T) {
	p, err := For(context.Background(), "out")
	require.NoError(t, err)
	assert.Equal(t, &FilePublisher{Dir: "out"}, p)

	p, err = For(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, &FilePublisher{Dir: "."}, p)

	_, err = For(context.Background(), "s3:///no-bucket")
	assert.Error(t, err)
}
