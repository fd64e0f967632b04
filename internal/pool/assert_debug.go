//go:build lanesdebug

package pool

import "fmt"

func assert(ok bool, format string, v ...interface{}) {
	if !ok {
		panic(fmt.Sprintf("pool: "+format, v...))
	}
}
