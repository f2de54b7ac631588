// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

// maxSchemaDepth limits the depth of schema walking.
const maxSchemaDepth = 1

// DumpSchema writes a sorted list of the attribute keys a row type offers to
// the --attrs flag. If w is nil, os.Stdout is used.
func DumpSchema(prefix string, typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w,
		`Row attributes that are directly available to the --attrs flag.
For the full payload use --output=raw.`)
	fmt.Fprintln(w, "")

	keys := schemaWalker(prefix, typ, 0)
	if len(keys) == 0 {
		log.Debugf("no tagged fields found for type: %s", typ.Name())
		return
	}

	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintln(w, key)
	}
}

// schemaWalker recursively walks a struct type discovering json tags.
func schemaWalker(holder string, typ reflect.Type, depth int) []string {
	keys := make([]string, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		name := strings.Split(tagValue, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if holder != "" {
			name = holder + "." + name
		}

		keys = append(keys, name)

		if depth < maxSchemaDepth {
			switch field.Type.Kind() {
			case reflect.Struct:
				keys = append(keys, schemaWalker(name, field.Type, depth+1)...)
			case reflect.Ptr:
				if field.Type.Elem().Kind() == reflect.Struct {
					keys = append(keys, schemaWalker(name, field.Type.Elem(), depth+1)...)
				}
			case reflect.Slice:
				if field.Type.Elem().Kind() == reflect.Struct {
					keys = append(keys, schemaWalker(name+"[]", field.Type.Elem(), depth+1)...)
				}
			default:
			}
		}
	}

	return keys
}
