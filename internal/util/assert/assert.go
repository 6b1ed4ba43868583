package assert

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/stylrsa/seo-pregen/internal/log"
	"os"
)

// data is a flat list of key value pairs
func assert(msg string, data ...any) {
	fields := logrus.Fields{}
	for i := 0; i < len(data); i += 2 {
		key := fmt.Sprint(data[i])
		if i+1 < len(data) {
			fields[key] = data[i+1]
			continue
		}

		fields[key] = ""
	}

	logger := log.GetLogger()
	if logger == nil {
		fmt.Fprintf(os.Stderr, "assertion failed: %s %v\n", msg, fields)
		os.Exit(1)
	}

	logger.WithFields(fields).Fatal(msg)
	os.Exit(1)
}

func Assert(truth bool, msg string, data ...any) {
	if !truth {
		assert(msg, data...)
	}
}

func NotNil(obj any, msg string, data ...any) {
	if obj != nil {
		return
	}

	assert(msg, data...)
}
