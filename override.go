package avro

// Override interfaces let a target type move between itself and a Record without
// going through its Shape. A Processor checks for them on every call.
//
// They are meant for generated code: a generator can emit both methods from the
// schema document and skip accessor dispatch on hot paths.

// RecordBuilder bypasses the shape on marshal.
type RecordBuilder interface {
	// AvroRecord returns the structural form of the receiver.
	// Entries for fields the schema does not declare are ignored.
	AvroRecord() (Record, error)
}

// RecordLoader bypasses the shape on unmarshal.
type RecordLoader interface {
	// LoadAvroRecord fills the receiver from a decoded record.
	// The receiver is freshly allocated; on error it is discarded.
	LoadAvroRecord(rec Record) error
}
