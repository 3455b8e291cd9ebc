package ioutil

import (
	"errors"
	"fmt"
	"io"
)

type (
	// WriteToHelper simplifies implementing [io.WriterTo]. It wraps the Writer along with a reference to the count
	// and err that WriterTo returns. Writes are delegated to the Writer until one fails; after that they're ignored.
	WriteToHelper struct {
		out   io.Writer
		count *int64
		err   *error
	}
)

// NewWriteToHelper creates a new WriteToHelper which delegates to the given Writer and updates the given count and err
// as needed.
//
//	func (r *report) WriteTo(w io.Writer) (count int64, err error) {
//		wh := ioutil.NewWriteToHelper(w, &count, &err)
//		wh.Write("hello")
//		wh.Writef("%d notices", 2)
//		return
//	}
func NewWriteToHelper(out io.Writer, count *int64, err *error) WriteToHelper {
	return WriteToHelper{
		out:   out,
		count: count,
		err:   err,
	}
}

func (w WriteToHelper) AddErr(err error) {
	*w.err = errors.Join(*w.err, err)
}

func (w WriteToHelper) Write(s string) {
	w.Writef(`%s`, s)
}

func (w WriteToHelper) Writef(format string, a ...any) {
	if *w.err != nil {
		return
	}

	count, err := fmt.Fprintf(w.out, format, a...)
	*w.count += int64(count)
	*w.err = err
}
