// Package apk locates and parses the DEX files inside an Android package.
package apk

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/apex/log"
	"github.com/blacktop/go-dex/pkg/dex"
	"github.com/pkg/errors"
	"github.com/shogo82148/androidbinary/apk"
	"golang.org/x/sync/errgroup"
)

// maxDexSize bounds a single classes*.dex entry.
const maxDexSize = 1 << 30

var dexEntryRE = regexp.MustCompile(`^classes(\d*)\.dex$`)

// DexFile is one parsed classesN.dex entry.
type DexFile struct {
	Name string    `json:"name"`
	Size uint64    `json:"size"`
	File *dex.File `json:"-"`
}

// APK is an Android package with every DEX file parsed.
type APK struct {
	Path        string    `json:"path"`
	PackageName string    `json:"package_name,omitempty"`
	VersionName string    `json:"version_name,omitempty"`
	VersionCode int32     `json:"version_code,omitempty"`
	MinSDK      int32     `json:"min_sdk,omitempty"`
	Dex         []DexFile `json:"dex"`
}

// dexNumber orders classes.dex before classes2.dex before classes10.dex.
func dexNumber(name string) (int, bool) {
	m := dexEntryRE.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return 1, true
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 2 {
		return 0, false
	}
	return n, true
}

// DexEntries returns the classes*.dex entries at the root of the archive in
// load order.
func DexEntries(zr *zip.Reader) []*zip.File {
	type entry struct {
		n int
		f *zip.File
	}
	var entries []entry
	for _, f := range zr.File {
		if path.Dir(f.Name) != "." {
			continue
		}
		if n, ok := dexNumber(f.Name); ok {
			entries = append(entries, entry{n, f})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
	files := make([]*zip.File, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.f)
	}
	return files
}

// ReadDexFiles parses every classes*.dex in the zip archive r. At most
// workers entries are parsed at once; zero means one per CPU.
func ReadDexFiles(r io.ReaderAt, size int64, workers int) ([]DexFile, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open zip archive")
	}
	entries := DexEntries(zr)
	if len(entries) == 0 {
		return nil, errors.New("no classes.dex found in archive")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]DexFile, len(entries))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, zf := range entries {
		g.Go(func() error {
			f, err := readDexEntry(zf)
			if err != nil {
				return errors.Wrapf(err, "failed to parse %s", zf.Name)
			}
			out[i] = DexFile{Name: zf.Name, Size: zf.UncompressedSize64, File: f}
			log.WithFields(log.Fields{
				"name":    zf.Name,
				"version": f.Header.Version,
				"classes": len(f.Classes),
			}).Debug("Parsed DEX")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readDexEntry(zf *zip.File) (*dex.File, error) {
	if zf.UncompressedSize64 > maxDexSize {
		return nil, errors.Errorf("entry is too large (%d bytes)", zf.UncompressedSize64)
	}
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxDexSize))
	if err != nil {
		return nil, err
	}
	return dex.Parse(data)
}

// Open parses the APK at path: its manifest metadata and every DEX file.
// Archives without a readable binary manifest (plain jars, bare dex zips)
// still yield their DEX files.
func Open(name string, workers int) (*APK, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", name)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", name)
	}

	a := &APK{Path: name}
	if err := a.readManifest(f, fi.Size()); err != nil {
		log.WithError(err).Debug("Failed to read AndroidManifest.xml")
	}
	if a.Dex, err = ReadDexFiles(f, fi.Size(), workers); err != nil {
		return nil, errors.Wrapf(err, "failed to read DEX files from %s", name)
	}
	return a, nil
}

func (a *APK) readManifest(r io.ReaderAt, size int64) error {
	pkg, err := apk.OpenZipReader(r, size)
	if err != nil {
		return err
	}
	defer pkg.Close()
	m := pkg.Manifest()
	if a.PackageName, err = m.Package.String(); err != nil {
		return err
	}
	a.VersionName, _ = m.VersionName.String()
	a.VersionCode, _ = m.VersionCode.Int32()
	a.MinSDK, _ = m.SDK.Min.Int32()
	return nil
}

// Classes returns the number of classes across every DEX file.
func (a *APK) Classes() int {
	n := 0
	for _, d := range a.Dex {
		n += len(d.File.Classes)
	}
	return n
}
