// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package arduboy unpacks .arduboy cartridge archives (spec §6): a ZIP
// container holding an Intel HEX program image, an optional FX data
// image, and an info.json manifest. The central directory, not the
// local file headers, is authoritative for entry sizes - some
// packagers (notably macOS Archive Utility) write zero-size local
// headers with a trailing data descriptor instead.
package arduboy

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/mgavr/avrcore/internal/avrerr"
)

// Cartridge is the unpacked contents of one .arduboy archive.
type Cartridge struct {
	Title   string
	Author  string
	HexText string // raw Intel HEX text for internal/loader/hex.Parse
	FXData  []byte // optional FX flash image, nil if the cartridge has none
}

type manifest struct {
	SchemaVersion int `json:"schemaVersion"`
	Binaries      []struct {
		Title    string `json:"title"`
		Program  string `json:"program"`
		Data     string `json:"data"`
		DeviceID string `json:"device"`
	} `json:"binaries"`
	Author string `json:"author"`
}

// Open parses the archive bytes. archive/zip reads the trailing
// central directory first, so the zero-size-local-header quirk never
// surfaces here; it would if this read the local headers sequentially
// instead.
func Open(raw []byte) (*Cartridge, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, avrerr.FileLoad("arduboy", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[normalizeName(f.Name)] = f
	}

	cart := &Cartridge{}

	if mf, ok := findByExt(files, "info.json"); ok {
		data, err := readAll(mf)
		if err != nil {
			return nil, avrerr.FileLoad("arduboy", err)
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, avrerr.FileLoad("arduboy", err)
		}
		cart.Author = m.Author
		if len(m.Binaries) > 0 {
			cart.Title = m.Binaries[0].Title
		}
	}

	hexFile, ok := findByExt(files, ".hex")
	if !ok {
		return nil, avrerr.FileLoad("arduboy", errNoHexEntry)
	}
	hexBytes, err := readAll(hexFile)
	if err != nil {
		return nil, avrerr.FileLoad("arduboy", err)
	}
	cart.HexText = string(hexBytes)

	if fxFile, ok := findByExt(files, ".bin"); ok {
		fxBytes, err := readAll(fxFile)
		if err != nil {
			return nil, avrerr.FileLoad("arduboy", err)
		}
		cart.FXData = fxBytes
	}

	return cart, nil
}

func normalizeName(name string) string {
	return strings.ToLower(path.Base(name))
}

func findByExt(files map[string]*zip.File, suffix string) (*zip.File, bool) {
	if f, ok := files[suffix]; ok {
		return f, true
	}
	for name, f := range files {
		if strings.HasSuffix(name, suffix) {
			return f, true
		}
	}
	return nil, false
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

const errNoHexEntry = simpleErr("archive contains no .hex program image")
