package pairdata

import (
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// ExpandHome expands ~ to its proper path, where appropriate.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		path = filepath.Join(usr.HomeDir, (path)[2:])
	}

	return path
}

// DetermineDelimiter returns the single most likely rune that would delimit
// the values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

type compression byte

const (
	compressionNone compression = iota
	compressionGzip
	compressionZip
	compressionXZ
	compressionZ
	compressionBZip2
)

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var compressionSigs = map[compression][]byte{
	compressionGzip:  {0x1f, 0x8b, 0x08},
	compressionZip:   {0x50, 0x4b, 0x03, 0x04},
	compressionXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	compressionZ:     {0x1f, 0x9d},
	compressionBZip2: {0x42, 0x5a, 0x68},
}

func detectCompression(buff []byte) compression {
Outer:
	for c, sig := range compressionSigs {
		if len(buff) < len(sig) {
			continue
		}
		for i := range sig {
			if buff[i] != sig[i] {
				continue Outer
			}
		}
		return c
	}

	return compressionNone
}

// maybeDecompress wraps a table file in the matching decompressor when its
// magic bytes identify a known compression format, so loaders accept
// plain, gzipped, zipped, xz and zlib inputs alike.
func maybeDecompress(f *os.File) (io.Reader, error) {
	buff := make([]byte, 6)
	n, err := f.Read(buff)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if n < len(buff) {
		return f, nil
	}

	switch detectCompression(buff) {
	case compressionGzip:
		return gzip.NewReader(f)
	case compressionZip:
		return zipstream.NewReader(f), nil
	case compressionBZip2:
		return bzip2.NewReader(f), nil
	case compressionXZ:
		return xz.NewReader(f, 0)
	case compressionZ:
		return zlib.NewReader(f)
	}

	return f, nil
}
