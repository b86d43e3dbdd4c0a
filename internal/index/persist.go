package index

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// Persisted artifacts. Both are required for a load.
const (
	VectorsFile = "index.vec"
	ChunksFile  = "chunks.json"
)

const formatVersion = 1

var magic = [4]byte{'P', 'Q', 'I', 'X'}

// header is the fixed-size prefix of the vectors file. The model name and the
// little-endian float32 matrix follow it.
type header struct {
	Magic       [4]byte
	Version     uint32
	Dimension   uint32
	Count       uint32
	CreatedAt   int64 // unix nanoseconds
	BuildID     [16]byte
	ChunksSHA   [32]byte
	ModelLength uint16
}

// chunkRecord mirrors domain.Chunk with an optional id, so files written
// without chunk_id fall back to the position.
type chunkRecord struct {
	Text            string   `json:"text"`
	DocName         string   `json:"doc_name"`
	Page            int      `json:"page"`
	Section         string   `json:"section"`
	ClauseNumber    string   `json:"clause_number"`
	HeadingPath     string   `json:"heading_path"`
	CrossReferences []string `json:"cross_references"`
	ChunkID         *int     `json:"chunk_id,omitempty"`
}

// Save writes the vectors file and the chunk metadata file into dir.
// The vectors header carries a checksum of the metadata file, so a crash
// between the two writes is detected by the next Load.
func (x *Index) Save(dir string) error {
	if !x.loaded {
		return domain.ErrNotBuilt
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	chunksData, err := json.MarshalIndent(x.chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	vectorsData, err := x.encodeVectors(sha256.Sum256(chunksData))
	if err != nil {
		return err
	}

	if err := writeFileAtomic(filepath.Join(dir, VectorsFile), vectorsData); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, ChunksFile), chunksData); err != nil {
		return fmt.Errorf("write chunks: %w", err)
	}

	x.logger.Info("Index saved",
		zap.String("dir", dir),
		zap.String("build_id", x.meta.BuildID),
		zap.Int("chunks", len(x.chunks)),
	)
	return nil
}

// Load reads a persisted index from dir. It returns false when either file is
// missing, and false with a logged warning when the files are unreadable,
// inconsistent with each other, or built by a different encoder.
func (x *Index) Load(dir string) bool {
	vecPath := filepath.Join(dir, VectorsFile)
	chunkPath := filepath.Join(dir, ChunksFile)
	if !fileExists(vecPath) || !fileExists(chunkPath) {
		x.logger.Debug("No persisted index", zap.String("dir", dir))
		return false
	}

	if err := x.load(vecPath, chunkPath); err != nil {
		x.logger.Warn("Failed to load index",
			zap.String("dir", dir),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrPersistenceLoad, err)),
		)
		return false
	}

	x.logger.Info("Index loaded",
		zap.String("dir", dir),
		zap.String("build_id", x.meta.BuildID),
		zap.Int("vectors", x.meta.Count),
		zap.Int("chunks", len(x.chunks)),
	)
	return true
}

func (x *Index) load(vecPath, chunkPath string) error {
	chunksData, err := os.ReadFile(filepath.Clean(chunkPath))
	if err != nil {
		return fmt.Errorf("read chunks: %w", err)
	}
	chunks, err := decodeChunks(chunksData)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Clean(vecPath))
	if err != nil {
		return fmt.Errorf("open vectors: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if h.Magic != magic {
		return errors.New("not an index file")
	}
	if h.Version != formatVersion {
		return fmt.Errorf("unsupported index version %d", h.Version)
	}
	if h.ChunksSHA != sha256.Sum256(chunksData) {
		return errors.New("chunk metadata does not match vectors file")
	}
	if int(h.Count) != len(chunks) {
		return fmt.Errorf("vectors file has %d rows, metadata has %d chunks", h.Count, len(chunks))
	}

	model := make([]byte, h.ModelLength)
	if _, err := io.ReadFull(r, model); err != nil {
		return fmt.Errorf("read model name: %w", err)
	}

	if x.encoder != nil {
		if dim := x.encoder.Dimension(); int(h.Dimension) != dim {
			return &domain.DimensionMismatchError{Want: dim, Got: int(h.Dimension)}
		}
		if name := x.encoder.Name(); string(model) != name {
			return fmt.Errorf("index built with %q, active encoder is %q", model, name)
		}
	}

	vectors := make([]float32, int(h.Count)*int(h.Dimension))
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return fmt.Errorf("read vectors: %w", err)
	}
	if _, err := r.ReadByte(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after vectors")
	}

	buildID, err := uuid.FromBytes(h.BuildID[:])
	if err != nil {
		return fmt.Errorf("build id: %w", err)
	}

	x.vectors = vectors
	x.chunks = chunks
	x.meta = Meta{
		BuildID:   buildID.String(),
		CreatedAt: time.Unix(0, h.CreatedAt).UTC(),
		Model:     string(model),
		Dimension: int(h.Dimension),
		Count:     int(h.Count),
	}
	x.loaded = true
	return nil
}

func (x *Index) encodeVectors(chunksSHA [32]byte) ([]byte, error) {
	buildID, err := uuid.Parse(x.meta.BuildID)
	if err != nil {
		return nil, fmt.Errorf("build id: %w", err)
	}
	if len(x.meta.Model) > 0xFFFF {
		return nil, errors.New("model name too long")
	}

	h := header{
		Magic:       magic,
		Version:     formatVersion,
		Dimension:   uint32(x.meta.Dimension), //nolint:gosec // dimension is bounded by the encoder
		Count:       uint32(x.meta.Count),     //nolint:gosec // chunk counts fit in uint32
		CreatedAt:   x.meta.CreatedAt.UnixNano(),
		BuildID:     [16]byte(buildID),
		ChunksSHA:   chunksSHA,
		ModelLength: uint16(len(x.meta.Model)), //nolint:gosec // checked above
	}

	var buf bytes.Buffer
	buf.Grow(binary.Size(h) + len(x.meta.Model) + len(x.vectors)*4)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	buf.WriteString(x.meta.Model)
	if err := binary.Write(&buf, binary.LittleEndian, x.vectors); err != nil {
		return nil, fmt.Errorf("encode vectors: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeChunks(data []byte) ([]domain.Chunk, error) {
	var records []chunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		id := i
		if r.ChunkID != nil {
			id = *r.ChunkID
		}
		refs := r.CrossReferences
		if refs == nil {
			refs = []string{}
		}
		chunks[i] = domain.Chunk{
			Text:            r.Text,
			DocName:         r.DocName,
			Page:            r.Page,
			Section:         r.Section,
			ClauseNumber:    r.ClauseNumber,
			HeadingPath:     r.HeadingPath,
			CrossReferences: refs,
			ChunkID:         id,
		}
	}
	return chunks, nil
}

// writeFileAtomic writes data to a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
