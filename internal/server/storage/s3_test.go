package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/logging"
)

type fakeS3 struct {
	putCalls    int
	putErrs     []error
	getCalls    int
	getErr      error
	getBody     string
	deleteCalls int
	deleteErr   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putCalls++
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.getBody))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteCalls++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "backend detail"}
}

func TestS3Put_ValidatesBeforeNetwork(t *testing.T) {
	fake := &fakeS3{}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}
	ctx := context.Background()

	err := store.Put(ctx, "", []byte("data"), "text/plain")
	assert.ErrorIs(t, err, common.ErrValidation)

	err = store.Put(ctx, "name", nil, "text/plain")
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Zero(t, fake.putCalls, "no network call on invalid input")
}

func TestS3Put_Success(t *testing.T) {
	fake := &fakeS3{}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	err := store.Put(context.Background(), "enc-x-file.txt", []byte("data"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.putCalls)
}

func TestS3Put_AccessDeniedNotRetried(t *testing.T) {
	fake := &fakeS3{putErrs: []error{apiError("AccessDenied")}}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	err := store.Put(context.Background(), "name", []byte("data"), "")
	assert.ErrorIs(t, err, common.ErrStorageAccessDenied)
	assert.ErrorIs(t, err, common.ErrUpstreamStorage)
	assert.Equal(t, 1, fake.putCalls, "auth failures must not be retried")
}

func TestS3Put_TransientRetriedThenSucceeds(t *testing.T) {
	fake := &fakeS3{putErrs: []error{errors.New("connection reset"), nil}}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	err := store.Put(context.Background(), "name", []byte("data"), "")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.putCalls)
}

func TestS3Get_NotFoundSurfacesAsUpstream(t *testing.T) {
	fake := &fakeS3{getErr: apiError("NoSuchKey")}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrUpstreamStorage)
	assert.Equal(t, 1, fake.getCalls)
}

func TestS3Get_Success(t *testing.T) {
	fake := &fakeS3{getBody: "ciphertext"}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	data, err := store.Get(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), data)
}

func TestS3Delete_ClassifiesConfigError(t *testing.T) {
	fake := &fakeS3{deleteErr: apiError("NoSuchBucket")}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	err := store.Delete(context.Background(), "name")
	assert.ErrorIs(t, err, common.ErrStorageConfig)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"access denied", apiError("AccessDenied"), common.ErrStorageAccessDenied},
		{"bad credentials", apiError("InvalidAccessKeyId"), common.ErrStorageAccessDenied},
		{"bad signature", apiError("SignatureDoesNotMatch"), common.ErrStorageAccessDenied},
		{"missing bucket", apiError("NoSuchBucket"), common.ErrStorageConfig},
		{"request timeout", apiError("RequestTimeout"), common.ErrStorageTimeout},
		{"context deadline", context.DeadlineExceeded, common.ErrStorageTimeout},
		{"unknown transport", errors.New("dial tcp: i/o error"), common.ErrStorageNetwork},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.in)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, common.ErrUpstreamStorage)
		})
	}
}

func TestClassify_NeverLeaksBackendDiagnostics(t *testing.T) {
	backendErrs := []error{
		apiError("AccessDenied"),
		apiError("NoSuchBucket"),
		apiError("RequestTimeout"),
		apiError("NoSuchKey"),
		apiError("InternalError"),
		errors.New("dial tcp 10.0.0.1:443: i/o timeout"),
	}

	for _, in := range backendErrs {
		got := classify(in)
		assert.NotContains(t, got.Error(), "backend detail")
		assert.NotContains(t, got.Error(), in.Error(),
			"classified error must not carry the backend message")
	}
}

func TestS3Put_ErrorCarriesOnlyCategory(t *testing.T) {
	fake := &fakeS3{putErrs: []error{apiError("InvalidAccessKeyId")}}
	store := &S3BlobStore{client: fake, bucket: "vault", log: logging.NewDefault()}

	err := store.Put(context.Background(), "name", []byte("data"), "")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "InvalidAccessKeyId")
	assert.NotContains(t, err.Error(), "backend detail")
}

func TestMemoryBlobStore_RoundTrip(t *testing.T) {
	store := NewMemoryBlobStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte("one"), "text/plain"))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrUpstreamStorage)
}

func TestMemoryBlobStore_Validation(t *testing.T) {
	store := NewMemoryBlobStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Put(ctx, " ", []byte("x"), ""), common.ErrValidation)
	assert.ErrorIs(t, store.Put(ctx, "n", nil, ""), common.ErrValidation)
	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
}
