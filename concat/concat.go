// Package concat merges the chunked CSV files written by a mesh logger into
// one file per sensor type.
//
// A logger starts a new file at a preset interval, e.g.:
//
//	ca0c_airQualityMetrics_2024-12-19_11-25-29.csv
//	ca0c_airQualityMetrics_2024-12-19_12-25-33.csv
//	ca0c_deviceMetrics_2024-12-19_11-25-29.csv
//
// which become:
//
//	ca0c_airQualityMetrics.csv
//	ca0c_deviceMetrics.csv
package concat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// HeaderMismatchError is returned when a chunk does not carry the header of
// the first chunk of its group.
type HeaderMismatchError struct {
	First string // first file of the group
	File  string // offending file
	Want  string // header of the first file
	Got   string // header of the offending file
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf(
		"concat: header mismatch: first file %q has header %q, file %q has header %q",
		e.First, e.Want, e.File, e.Got,
	)
}

// LoggerFiles returns the files of dir named <logger>_*<ext>, sorted by name.
// When there is none and rename is set, every *<ext> file of dir is assumed
// to come from the logger and is renamed to <logger>_<name> before searching
// again.
func LoggerFiles(logger, dir, ext string, rename bool) ([]string, error) {
	if logger == "" {
		return nil, fmt.Errorf("concat: empty logger name")
	}
	files, err := glob(dir, logger+"_*"+ext)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		return files, nil
	}
	if !rename {
		return nil, fmt.Errorf("concat: no %s file for logger %q in %q", ext, logger, dir)
	}

	all, err := glob(dir, "*"+ext)
	if err != nil {
		return nil, err
	}
	for _, fname := range all {
		dst := filepath.Join(dir, logger+"_"+filepath.Base(fname))
		_, err = os.Stat(dst)
		if err == nil {
			return nil, fmt.Errorf("concat: cannot rename %q: %q already exists", fname, dst)
		}
		err = os.Rename(fname, dst)
		if err != nil {
			return nil, fmt.Errorf("concat: could not rename %q: %w", fname, err)
		}
	}

	files, err = glob(dir, logger+"_*"+ext)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("concat: no %s file for logger %q in %q", ext, logger, dir)
	}
	return files, nil
}

func glob(dir, pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("concat: invalid pattern %q: %w", pattern, err)
	}
	o := files[:0]
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil || fi.IsDir() {
			continue
		}
		o = append(o, f)
	}
	sort.Strings(o)
	return o, nil
}

// FileGroup is the list of chunks of one sensor type.
type FileGroup struct {
	Sensor string
	Files  []string
}

// SensorType returns the sensor type of a chunk: the second
// underscore-separated token of its base name, without extension.
func SensorType(fname string) (string, bool) {
	base := filepath.Base(fname)
	toks := strings.Split(base, "_")
	if len(toks) < 2 {
		return "", false
	}
	sensor := strings.TrimSuffix(toks[1], filepath.Ext(toks[1]))
	if sensor == "" {
		return "", false
	}
	return sensor, true
}

// Group groups files by sensor type. Groups are sorted by sensor type and
// files keep their name order. Files without a sensor type are ignored.
func Group(files []string) []FileGroup {
	idx := make(map[string][]string)
	for _, f := range files {
		sensor, ok := SensorType(f)
		if !ok {
			continue
		}
		idx[sensor] = append(idx[sensor], f)
	}
	groups := make([]FileGroup, 0, len(idx))
	for sensor, fs := range idx {
		sort.Strings(fs)
		groups = append(groups, FileGroup{Sensor: sensor, Files: fs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Sensor < groups[j].Sensor })
	return groups
}

// Files concatenates files into out.
// When hasHeader is set, the first line of every file must be identical to
// the first line of the first file; it is written once at the top of out.
// A file equal to out is skipped. On error, out is removed.
func Files(files []string, out string, hasHeader bool) (err error) {
	if len(files) == 0 {
		return fmt.Errorf("concat: no file to concatenate into %q", out)
	}

	oabs, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	var inputs []string
	for _, f := range files {
		fabs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		if fabs == oabs {
			continue
		}
		inputs = append(inputs, f)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("concat: no file to concatenate into %q", out)
	}

	o, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			o.Close()
			os.Remove(out)
		}
	}()

	w := bufio.NewWriter(o)
	var header string
	for i, fname := range inputs {
		err = appendFile(w, fname, hasHeader, i == 0, &header, inputs[0])
		if err != nil {
			return err
		}
	}

	err = w.Flush()
	if err != nil {
		return err
	}
	return o.Close()
}

func appendFile(w *bufio.Writer, fname string, hasHeader, first bool, header *string, ref string) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if hasHeader {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("concat: could not read header of %q: %w", fname, err)
		}
		if first {
			*header = line
			_, err = w.WriteString(line)
			if err != nil {
				return err
			}
			if line != "" && !strings.HasSuffix(line, "\n") {
				err = w.WriteByte('\n')
				if err != nil {
					return err
				}
			}
		}
		if line != *header {
			return &HeaderMismatchError{First: ref, File: fname, Want: *header, Got: line}
		}
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("concat: could not read %q: %w", fname, err)
	}
	if len(body) == 0 {
		return nil
	}
	_, err = w.Write(body)
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(body, []byte("\n")) {
		return w.WriteByte('\n')
	}
	return nil
}
