package envelope

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"github.com/born-ml/contract/internal/adapter"
	"github.com/born-ml/contract/internal/contract"
	"github.com/born-ml/contract/internal/logging"
	"github.com/born-ml/contract/internal/schema"
)

type settings struct {
	version   uint32
	metadata  map[string]string
	registry  *adapter.Registry
	modelOpts []contract.Option
	logger    *slog.Logger
}

// Option configures Save and Load.
type Option func(*settings)

// WithFormatVersion selects the format Save writes. Load ignores it.
func WithFormatVersion(v int) Option {
	return func(s *settings) {
		if v < 0 {
			v = 0
		}
		s.version = uint32(v)
	}
}

// WithMetadata attaches string metadata to the saved envelope.
func WithMetadata(md map[string]string) Option {
	return func(s *settings) {
		if s.metadata == nil {
			s.metadata = make(map[string]string, len(md))
		}
		maps.Copy(s.metadata, md)
	}
}

// WithRegistry resolves adapter variants in r instead of adapter.Default.
func WithRegistry(r *adapter.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithModelOptions passes options to contract.New when loading. The saved
// model id is applied first, so WithID here overrides it.
func WithModelOptions(opts ...contract.Option) Option {
	return func(s *settings) { s.modelOpts = append(s.modelOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func newSettings(opts []Option) settings {
	s := settings{version: FormatVersion, registry: adapter.Default}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.New("envelope")
	}
	return s
}

// Save encodes m with its adapter state.
func Save(m *contract.Model, opts ...Option) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("envelope: nil model: %w", ErrSerialization)
	}
	s := newSettings(opts)
	if s.version != FormatVersionV1 && s.version != FormatVersionV2 {
		return nil, &VersionError{Got: s.version, Max: FormatVersion}
	}

	state, err := m.Adapter().State()
	if err != nil {
		return nil, fmt.Errorf("envelope: adapter state: %w: %w", ErrSerialization, adapter.Wrap(m.Variant(), err))
	}

	header := Header{
		FormatVersion:  int(s.version),
		AdapterVariant: m.Variant(),
		ModelID:        m.ID(),
		InputSchema:    m.InputSchema().Descriptor(),
		OutputSchema:   m.OutputSchema().Descriptor(),
		Metadata:       s.metadata,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("envelope: marshal header: %w: %w", ErrSerialization, err)
	}

	var flags uint32
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	var data []byte
	if s.version == FormatVersionV1 {
		data = encodeV1(flags, headerJSON, state)
	} else {
		data = encodeV2(flags, headerJSON, state)
	}

	s.logger.Debug("envelope saved",
		slog.String("variant", header.AdapterVariant),
		slog.String("model_id", header.ModelID.String()),
		slog.Int("version", header.FormatVersion),
		slog.Int("bytes", len(data)))
	return data, nil
}

func encodeV1(flags uint32, headerJSON, state []byte) []byte {
	pos := int64(prefixSizeV1 + len(headerJSON))
	pad := padding(pos)

	buf := bytes.NewBuffer(make([]byte, 0, pos+pad+int64(len(state))))
	buf.WriteString(MagicBytes)
	_ = binary.Write(buf, binary.LittleEndian, uint32(FormatVersionV1))
	_ = binary.Write(buf, binary.LittleEndian, flags)
	_ = binary.Write(buf, binary.LittleEndian, uint64(len(headerJSON)))
	buf.Write(headerJSON)
	buf.Write(make([]byte, pad))
	buf.Write(state)
	return buf.Bytes()
}

func encodeV2(flags uint32, headerJSON, state []byte) []byte {
	pos := int64(FixedHeaderSizeV2 + len(headerJSON))
	pad := padding(pos)

	data := make([]byte, pos+pad+int64(len(state)))
	copy(data[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(data[4:8], FormatVersionV2)
	binary.LittleEndian.PutUint32(data[8:12], flags)
	// 0x0C-0x0F reserved
	binary.LittleEndian.PutUint64(data[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(data[24:32], uint64(len(state)))
	sum := checksum(headerJSON, state)
	copy(data[ChecksumOffsetV2:ChecksumOffsetV2+ChecksumSize], sum[:])
	copy(data[FixedHeaderSizeV2:], headerJSON)
	copy(data[pos+pad:], state)
	return data
}

func checksum(headerJSON, state []byte) [32]byte {
	h := sha256.New()
	h.Write(headerJSON)
	h.Write(state)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Load decodes an envelope, restores its adapter from the registry and
// binds it to the saved schemas.
func Load(data []byte, opts ...Option) (*contract.Model, error) {
	s := newSettings(opts)

	header, state, err := decode(data)
	if err != nil {
		return nil, err
	}

	a, err := s.registry.New(header.AdapterVariant)
	if err != nil {
		if errors.Is(err, adapter.ErrUnknownVariant) {
			return nil, &UnknownVariantError{Variant: header.AdapterVariant}
		}
		return nil, corrupt("construct adapter", err)
	}
	if err := a.Load(state); err != nil {
		return nil, corrupt("load adapter state", adapter.Wrap(header.AdapterVariant, err))
	}

	input, err := schema.FromDescriptor(header.InputSchema)
	if err != nil {
		return nil, corrupt("input schema", err)
	}
	output, err := schema.FromDescriptor(header.OutputSchema)
	if err != nil {
		return nil, corrupt("output schema", err)
	}

	modelOpts := make([]contract.Option, 0, len(s.modelOpts)+1)
	if header.ModelID != uuid.Nil {
		modelOpts = append(modelOpts, contract.WithID(header.ModelID))
	}
	modelOpts = append(modelOpts, s.modelOpts...)

	m, err := contract.New(a, input, output, modelOpts...)
	if err != nil {
		return nil, corrupt("bind model", err)
	}

	s.logger.Debug("envelope loaded",
		slog.String("variant", header.AdapterVariant),
		slog.String("model_id", m.ID().String()),
		slog.Int("version", header.FormatVersion))
	return m, nil
}

// ReadHeader decodes and verifies an envelope without restoring the model.
func ReadHeader(data []byte) (Header, error) {
	h, _, err := decode(data)
	return h, err
}

func decode(data []byte) (Header, []byte, error) {
	if len(data) < 8 {
		return Header{}, nil, corrupt("truncated fixed header", nil)
	}
	if string(data[0:4]) != MagicBytes {
		return Header{}, nil, corrupt(fmt.Sprintf("invalid magic bytes %q", data[0:4]), nil)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	var (
		headerJSON, state []byte
		err               error
	)
	switch version {
	case FormatVersionV1:
		headerJSON, state, err = decodeV1(data)
	case FormatVersionV2:
		headerJSON, state, err = decodeV2(data)
	default:
		return Header{}, nil, &VersionError{Got: version, Max: FormatVersion}
	}
	if err != nil {
		return Header{}, nil, err
	}

	var h Header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return Header{}, nil, corrupt("parse header JSON", err)
	}
	if h.FormatVersion != int(version) {
		return Header{}, nil, corrupt(
			fmt.Sprintf("header says version %d, container says %d", h.FormatVersion, version), nil)
	}
	if h.AdapterVariant == "" {
		return Header{}, nil, corrupt("missing adapter variant", nil)
	}
	return h, state, nil
}

func decodeV1(data []byte) (headerJSON, state []byte, err error) {
	if len(data) < prefixSizeV1 {
		return nil, nil, corrupt("truncated fixed header", nil)
	}
	headerSize := binary.LittleEndian.Uint64(data[12:20])
	if headerSize > MaxHeaderSize {
		return nil, nil, corrupt(fmt.Sprintf("header size %d exceeds %d", headerSize, MaxHeaderSize), nil)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	end := int64(prefixSizeV1) + int64(headerSize)
	stateOffset := end + padding(end)
	if stateOffset > int64(len(data)) {
		return nil, nil, corrupt("truncated header", nil)
	}
	return data[prefixSizeV1:end], data[stateOffset:], nil
}

func decodeV2(data []byte) (headerJSON, state []byte, err error) {
	if len(data) < FixedHeaderSizeV2 {
		return nil, nil, corrupt("truncated fixed header", nil)
	}
	headerSize := binary.LittleEndian.Uint64(data[16:24])
	stateSize := binary.LittleEndian.Uint64(data[24:32])
	if headerSize > MaxHeaderSize {
		return nil, nil, corrupt(fmt.Sprintf("header size %d exceeds %d", headerSize, MaxHeaderSize), nil)
	}
	if stateSize > uint64(len(data)) {
		return nil, nil, corrupt(fmt.Sprintf("state size %d exceeds envelope size %d", stateSize, len(data)), nil)
	}

	//nolint:gosec // G115: both sizes are bounded above
	end := int64(FixedHeaderSizeV2) + int64(headerSize)
	stateOffset := end + padding(end)
	//nolint:gosec // G115: stateSize <= len(data)
	total := stateOffset + int64(stateSize)
	switch {
	case total > int64(len(data)):
		return nil, nil, corrupt("truncated", nil)
	case total < int64(len(data)):
		return nil, nil, corrupt(fmt.Sprintf("%d trailing bytes", int64(len(data))-total), nil)
	}

	headerJSON = data[FixedHeaderSizeV2:end]
	state = data[stateOffset:total]

	var stored [32]byte
	copy(stored[:], data[ChecksumOffsetV2:ChecksumOffsetV2+ChecksumSize])
	if checksum(headerJSON, state) != stored {
		return nil, nil, corrupt("checksum mismatch", nil)
	}
	return headerJSON, state, nil
}
