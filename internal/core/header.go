package core

import (
	"errors"
	"os"
)

// ReadHeader returns the column names from the header row of the CSV file
// at path, in file order. Duplicate names are returned as they appear.
func ReadHeader(path, encodingName string) ([]string, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Op: "open", Path: path, Err: err}
	}
	defer in.Close()

	_, plan, err := New().prepare(decodeReader(in, enc))
	if err != nil {
		var mh *MissingHeaderError
		if errors.As(err, &mh) {
			mh.Path = path
		}
		return nil, err
	}
	return plan.columns, nil
}
