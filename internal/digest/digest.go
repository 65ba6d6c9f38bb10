package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// Default 是未显式配置时使用的算法。
const Default = "md5"

// ErrUnsupportedAlgorithm 表示算法名称未注册。
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

var algorithms = map[string]func() hash.Hash{
	"md4":        md4.New,
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512/224": sha512.New512_224,
	"sha512/256": sha512.New512_256,
	"sha512":     sha512.New,
	"sha3-224":   sha3.New224,
	"sha3-256":   sha3.New256,
	"sha3-384":   sha3.New384,
	"sha3-512":   sha3.New512,
	"ripemd160":  ripemd160.New,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	"blake2b-384": func() hash.Hash {
		h, _ := blake2b.New384(nil)
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	"blake2s-256": func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	},
	"crc32b":  func() hash.Hash { return crc32.NewIEEE() },
	"crc32c":  func() hash.Hash { return crc32.New(crc32.MakeTable(crc32.Castagnoli)) },
	"fnv132":  func() hash.Hash { return fnv.New32() },
	"fnv1a32": func() hash.Hash { return fnv.New32a() },
	"fnv164":  func() hash.Hash { return fnv.New64() },
	"fnv1a64": func() hash.Hash { return fnv.New64a() },
	"xxh64":   func() hash.Hash { return xxhash.New() },
}

// Normalize 统一大小写与空白，便于配置文件中书写 "SHA256" 之类的名称。
func Normalize(algo string) string {
	return strings.ToLower(strings.TrimSpace(algo))
}

// Supported 判断算法名称是否可用。
func Supported(algo string) bool {
	_, ok := algorithms[Normalize(algo)]
	return ok
}

// Algorithms 返回按字母排序的全部算法名称。
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum 返回 value 在 algo 下的十六进制摘要。
func Sum(algo, value string) (string, error) {
	ctor, ok := algorithms[Normalize(algo)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algo)
	}
	h := ctor()
	_, _ = h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustSum 与 Sum 相同，但算法不可用时 panic；仅用于已校验过的算法。
func MustSum(algo, value string) string {
	sum, err := Sum(algo, value)
	if err != nil {
		panic(err)
	}
	return sum
}
