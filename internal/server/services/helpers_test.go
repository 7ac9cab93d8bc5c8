package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/cryptox"
	"github.com/dmitrijs2005/projdash/internal/logging"
	"github.com/dmitrijs2005/projdash/internal/server/blobstore"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/jsonfile"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var fastKDF = cryptox.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return data, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobs) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3.local/" + key + "?ttl=" + ttl.String(), nil
}

var _ blobstore.Store = (*fakeBlobs)(nil)

type env struct {
	cfg      *config.Config
	manager  repomanager.Manager
	users    *UserService
	projects *ProjectService
	avatars  *AvatarService
}

// newEnv wires the services over a file-backed store in a temp dir. blobs may
// be nil for inline pictures.
func newEnv(t *testing.T, blobs blobstore.Store, mutate ...func(*config.Config)) *env {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	for _, m := range mutate {
		m(cfg)
	}

	store, err := jsonfile.Open(cfg.DataDir)
	require.NoError(t, err)
	m := repomanager.NewFileManager(store)
	t.Cleanup(func() { _ = m.Close() })

	av := NewAvatarService(m, blobs, cfg, logging.Nop())
	us := NewUserService(m, av, cfg)
	us.kdf = fastKDF

	return &env{cfg: cfg, manager: m, users: us, projects: NewProjectService(m, cfg), avatars: av}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 3), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func register(t *testing.T, e *env, login string) string {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterRequest{Login: login, Password: "pw-" + login})
	require.NoError(t, err)
	return u.ID
}

// failingManager wraps a Manager and fails every transaction.
type failingManager struct {
	repomanager.Manager
	err error
}

func (f failingManager) WithTx(context.Context, func(context.Context, repomanager.Repositories) error) error {
	return f.err
}

var errTxFailed = errors.New("tx failed")
