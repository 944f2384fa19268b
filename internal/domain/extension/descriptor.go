package extension

// SignalType describes a kind of signal an extension can produce or match,
// for example a perceptual hash algorithm. Implementations are type-like
// descriptors, usually zero-size structs.
type SignalType interface {
	Name() string
}

// ContentType describes a kind of content that signals are derived from.
type ContentType interface {
	Name() string
}

// ExchangeAPI describes an API that signals can be fetched from or shared to.
type ExchangeAPI interface {
	Name() string
}
