package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/soundcache"
)

// SoundHeaderSize is the on-disk size of one sound descriptor record.
const SoundHeaderSize = 48

// Sound is a parsed sound descriptor: the fixed fields plus the four
// offsets into the shared Sound Cache arena.
type Sound struct {
	Handle        uint32
	BankIndex     uint32
	SampleRate    uint32
	BitsPerSample uint32
	NumChannels   uint32
	Compressed    uint32
	Index         uint32

	PathOffset    uint32
	NameOffset    uint32
	PayloadOffset uint32
	PayloadSize   uint32

	cache *soundcache.Cache
}

// Path resolves the sound's path string through the cache.
func (s *Sound) Path() (string, error) { return s.cache.GetString(int(s.PathOffset)) }

// Name resolves the sound's name string through the cache.
func (s *Sound) Name() (string, error) { return s.cache.GetString(int(s.NameOffset)) }

// Payload resolves the sound's raw PCM/IndyWV payload bytes through the cache.
func (s *Sound) Payload() ([]byte, error) {
	return s.cache.GetBytes(int(s.PayloadOffset), int(s.PayloadSize))
}

// Validate checks the offset-ordering and range invariants for one Sound
// against its owning cache (P8): pathOffset <= nameOffset < cache.Size(),
// and payloadOffset+payloadSize <= cache.Size().
func (s *Sound) Validate() error {
	size := s.cache.Size()
	if !(int(s.PathOffset) <= int(s.NameOffset) && int(s.NameOffset) < size) {
		return errf("validateSound", "pathOffset=%d nameOffset=%d out of order for cache size %d", s.PathOffset, s.NameOffset, size)
	}
	if int(s.PayloadOffset)+int(s.PayloadSize) > size {
		return errf("validateSound", "payload [%d, %d) exceeds cache size %d", s.PayloadOffset, s.PayloadOffset+s.PayloadSize, size)
	}
	return nil
}

// ParseSectionSounds reads the Sounds section: a u32 count, a u32 arena
// payload size, that many 48-byte sound headers, the arena payload itself,
// and a trailing u32 handle nonce (read and discarded — it has no effect on
// the in-memory model).
func ParseSectionSounds(r *bstream.Reader) ([]*Sound, *soundcache.Cache, error) {
	numSounds, err := r.ReadU32()
	if err != nil {
		return nil, nil, errf("parseSectionSounds", "count: %w", err)
	}
	dataSize, err := r.ReadU32()
	if err != nil {
		return nil, nil, errf("parseSectionSounds", "data size: %w", err)
	}

	sounds := make([]*Sound, 0, numSounds)
	cache := soundcache.New()

	for i := uint32(0); i < numSounds; i++ {
		s := &Sound{cache: cache}
		if s.Handle, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d handle: %w", i, err)
		}
		if s.BankIndex, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d bank index: %w", i, err)
		}
		if s.PathOffset, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d path offset: %w", i, err)
		}
		if s.NameOffset, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d name offset: %w", i, err)
		}
		if s.PayloadOffset, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d payload offset: %w", i, err)
		}
		// pLipSyncData is unused on disk; the slot is reserved but carries
		// no data we model.
		if _, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d reserved: %w", i, err)
		}
		if s.SampleRate, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d sample rate: %w", i, err)
		}
		if s.BitsPerSample, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d bits per sample: %w", i, err)
		}
		if s.NumChannels, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d channels: %w", i, err)
		}
		if s.PayloadSize, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d payload size: %w", i, err)
		}
		if s.Compressed, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d compressed flag: %w", i, err)
		}
		if s.Index, err = r.ReadU32(); err != nil {
			return nil, nil, errf("parseSectionSounds", "header %d index: %w", i, err)
		}
		sounds = append(sounds, s)
	}

	payload, err := r.ReadBytes(int(dataSize))
	if err != nil {
		return nil, nil, errf("parseSectionSounds", "arena payload: %w", err)
	}
	if _, err := cache.AppendBytes(payload); err != nil {
		return nil, nil, errf("parseSectionSounds", "seed cache: %w", err)
	}

	if _, err := r.ReadU32(); err != nil { // trailing handle nonce
		return nil, nil, errf("parseSectionSounds", "handle nonce: %w", err)
	}

	for i, s := range sounds {
		if err := s.Validate(); err != nil {
			return nil, nil, errf("parseSectionSounds", "sound %d: %w", i, err)
		}
	}

	return sounds, cache, nil
}

// WriteSectionSounds appends the Sounds section built from sounds and the
// arena bytes backing them.
func WriteSectionSounds(w *bstream.Writer, sounds []*Sound, cache *soundcache.Cache) {
	w.WriteU32(uint32(len(sounds)))
	w.WriteU32(uint32(cache.Size()))

	for _, s := range sounds {
		w.WriteU32(s.Handle)
		w.WriteU32(s.BankIndex)
		w.WriteU32(s.PathOffset)
		w.WriteU32(s.NameOffset)
		w.WriteU32(s.PayloadOffset)
		w.WriteU32(0) // pLipSyncData
		w.WriteU32(s.SampleRate)
		w.WriteU32(s.BitsPerSample)
		w.WriteU32(s.NumChannels)
		w.WriteU32(s.PayloadSize)
		w.WriteU32(s.Compressed)
		w.WriteU32(s.Index)
	}

	data, err := cache.GetBytes(0, cache.Size())
	if err == nil {
		w.Write(data)
	}
	w.WriteU32(0) // handle nonce
}

// SoundsSectionLength returns the on-disk byte length of a Sounds section
// without decoding its payload, read from its own prefix counts — used by
// both the offset oracle and the in-place patcher.
func SoundsSectionLength(r *bstream.Reader) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)

	numSounds, err := r.ReadU32()
	if err != nil {
		return 0, errf("soundsSectionLength", "count: %w", err)
	}
	dataSize, err := r.ReadU32()
	if err != nil {
		return 0, errf("soundsSectionLength", "data size: %w", err)
	}
	return 8 + int64(numSounds)*SoundHeaderSize + int64(dataSize) + 4, nil
}
