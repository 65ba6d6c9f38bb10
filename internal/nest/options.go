package nest

// Option 调整单个 nest 的存储目录或摘要算法，同时用于 New 与 Destroy。
type Option func(*options)

type options struct {
	path      string
	algorithm string
}

// WithPath 覆盖默认存储目录。
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithAlgorithm 覆盖默认摘要算法。
func WithAlgorithm(algo string) Option {
	return func(o *options) {
		o.algorithm = algo
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
