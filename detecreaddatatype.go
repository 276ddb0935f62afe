package microview

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}

	return "invalid"
}

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x78},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType checks the leading bytes of content against a set of known
// compression signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(content []byte) DataType {
	if len(content) == 0 {
		return DataTypeInvalid
	}

	// Match known signatures
Outer:
	for dt, sig := range byteCodeSigs {
		if len(content) < len(sig) {
			continue
		}
		for position := range sig {
			if content[position] != sig[position] {
				continue Outer
			}
		}

		// A lone 0x78 is also the letter 'x'. Only trust it when the second
		// byte completes a valid zlib header.
		if dt == DataTypeZ && (len(content) < 2 || (uint16(content[0])<<8|uint16(content[1]))%31 != 0) {
			continue
		}

		return dt
	}

	return DataTypeNoCompression
}

// MaybeDecompress returns the decompressed contents of content if it carries a
// known compression signature, and content itself otherwise. Zip archives
// yield their first entry.
func MaybeDecompress(content []byte) ([]byte, DataType, error) {
	dt := DetectDataType(content)
	if dt == DataTypeInvalid || dt == DataTypeNoCompression {
		return content, dt, nil
	}

	var rdr io.Reader
	var err error
	br := bytes.NewReader(content)

	switch dt {
	case DataTypeGzip:
		rdr, err = gzip.NewReader(br)
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		if _, err = zr.Next(); err == nil {
			rdr = zr
		}
	case DataTypeBZip2:
		rdr = bzip2.NewReader(br)
	case DataTypeXZ:
		rdr, err = xz.NewReader(br, 0)
	case DataTypeZ:
		rdr, err = zlib.NewReader(br)
	}
	if err != nil {
		return nil, dt, err
	}

	out, err := io.ReadAll(rdr)
	if err != nil {
		return nil, dt, err
	}

	return out, dt, nil
}
