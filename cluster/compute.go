// Command cluster prints the normalized compression distance between every pair of files in a directory.
// The distance of x and y is (C(xy) - min(C(x), C(y))) / max(C(x), C(y)), where C is a compressed size.
package main

import (
	"bytes"
	"compress/gzip"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/fumin/lzh"
	"github.com/fumin/lzh/config"
)

var log = logging.MustGetLogger("cluster")

func main() {
	c := config.Default()
	config.RegisterFlags(flag.CommandLine, &c)
	config.RegisterClusterFlags(flag.CommandLine, &c)
	if err := config.Parse(flag.CommandLine, os.Args[1:], &c); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	config.StartLogging("cluster", c.Verbose)

	if err := run(c); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(c config.Configuration) error {
	data, err := listFiles(c.Cluster.Dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	m, err := newMeter(c.Cluster.Intelligence, c.Capacity, c.Cluster.CacheSize)
	if err != nil {
		return errors.Wrap(err, "")
	}
	distMat, err := distanceMatrix(m, data)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := display(data, distMat); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func display(data []string, distMat []float64) error {
	// Print data as a comma separated array.
	buf := bytes.NewBuffer(nil)
	for i, fpath := range data {
		if err := buf.WriteByte('"'); err != nil {
			return errors.Wrap(err, "")
		}

		name := filepath.Base(fpath)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := buf.WriteString(base); err != nil {
			return errors.Wrap(err, "")
		}

		if err := buf.WriteByte('"'); err != nil {
			return errors.Wrap(err, "")
		}

		if i == len(data)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	log.Infof("[%s]", buf.Bytes())

	// Print distance matrix as a comma separated array.
	buf.Reset()
	for i, f := range distMat {
		if _, err := buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
			return errors.Wrap(err, "")
		}
		if i == len(distMat)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	log.Infof("[%s]", buf.Bytes())

	return nil
}

// A meter measures compressed sizes, remembering recent results by content hash.
type meter struct {
	size  func(p []byte) (float64, error)
	cache *lru.Cache[uint64, float64]
}

func newMeter(intelligence string, capacity, cacheSize int) (*meter, error) {
	m := &meter{}
	switch intelligence {
	case "lzh":
		m.size = func(p []byte) (float64, error) {
			n, err := lzh.CompressedSize(p, capacity)
			return float64(n), err
		}
	case "gzip":
		m.size = gzipSize
	default:
		return nil, errors.Errorf("unknown intelligence %q", intelligence)
	}

	cache, err := lru.New[uint64, float64](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m.cache = cache
	return m, nil
}

func (m *meter) complexity(p []byte) (float64, error) {
	key := xxhash.Sum64(p)
	if size, ok := m.cache.Get(key); ok {
		return size, nil
	}

	size, err := m.size(p)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	m.cache.Add(key, size)
	return size, nil
}

func gzipSize(p []byte) (float64, error) {
	buf := bytes.NewBuffer(nil)
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(p); err != nil {
		return -1, errors.Wrap(err, "")
	}
	if err := zw.Close(); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(buf.Len()), nil
}

func distance(m *meter, x, y []byte) (float64, error) {
	xy := make([]byte, 0, len(x)+len(y))
	xy = append(append(xy, x...), y...)

	kxy, err := m.complexity(xy)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	kx, err := m.complexity(x)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	ky, err := m.complexity(y)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}

	minxy := kx
	if ky < kx {
		minxy = ky
	}
	maxxy := kx
	if ky > kx {
		maxxy = ky
	}

	dist := (kxy - minxy) / maxxy
	return dist, nil
}

func distanceMatrix(m *meter, data []string) ([]float64, error) {
	contents := make([][]byte, len(data))
	for i, fpath := range data {
		b, err := os.ReadFile(fpath)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		contents[i] = b
	}

	n := len(data)
	if n < 2 {
		return nil, nil
	}
	mat := make([]float64, 0, n*(n-1)/2)
	for i := range data[:n-1] {
		for j := i + 1; j < n; j++ {
			dist, err := distance(m, contents[i], contents[j])
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			mat = append(mat, dist)
			log.Debugf("\"%s\"-\"%s\": %f", data[i], data[j], dist)
		}
	}
	return mat, nil
}

func listFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	data := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		fpath := filepath.Join(dir, f.Name())
		data = append(data, fpath)
	}
	return data, nil
}
