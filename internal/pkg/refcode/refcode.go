package refcode

import (
	"errors"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// DefaultAlphabet 去掉了 0/O、1/I 等易混字符
const DefaultAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// MaxAttempts 领取唯一编码的重试上限；8 位 32 字符空间内反复冲突
// 说明系统有问题而不是运气差，所以直接报错
const MaxAttempts = 10

var ErrExhausted = errors.New("生成唯一编码失败，已达最大重试次数")

// Generator 从受限字母表生成定长短码，可带固定前缀（试用码为 "T"）
type Generator struct {
	generate func() string
	prefix   string
}

func New(alphabet string, length int, prefix string) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}

	gen, err := nanoid.CustomASCII(alphabet, length)
	if err != nil {
		return nil, err
	}

	return &Generator{
		generate: gen,
		prefix:   strings.ToUpper(prefix),
	}, nil
}

// Generate 生成一个展示用大写短码；唯一性由调用方的唯一约束插入保证
func (g *Generator) Generate() string {
	return g.prefix + strings.ToUpper(g.generate())
}

// Normalize 入站编码统一大写、去空白后再比对
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
