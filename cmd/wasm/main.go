//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"

	"apidoc/internal/adapter/cache"
	"apidoc/internal/adapter/comment"
	"apidoc/internal/adapter/markdown"
	"apidoc/internal/adapter/memstore"
	"apidoc/internal/domain"
	"apidoc/internal/extractor"
	"apidoc/internal/usecase"
)

var (
	source   *memstore.MemorySource
	extract  *extractor.Extractor
	renderer *cache.CachedRenderer
)

func init() {
	source = memstore.NewMemorySource()
	comments, err := comment.NewExtractor(nil)
	if err != nil {
		panic(err)
	}
	extract = extractor.New(comments)
	renderer = cache.NewCachedRenderer(markdown.New(), cache.NewRenderCache(0))
}

func main() {
	c := make(chan struct{})

	js.Global().Set("apidocAdd", js.FuncOf(addFile))
	js.Global().Set("apidocGenerate", js.FuncOf(generate))
	js.Global().Set("apidocRemove", js.FuncOf(removeFile))
	js.Global().Set("apidocClear", js.FuncOf(clearFiles))
	js.Global().Set("apidocFiles", js.FuncOf(listFiles))

	<-c
}

func addFile(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: apidocAdd(filename, content)", nil)
	}

	filename := args[0].String()
	source.Put(filename, args[1].String())

	return makeResult(map[string]interface{}{
		"success":  true,
		"filename": filename,
	})
}

// generate runs the pipeline over every added file. The optional argument is
// the project metadata as a JSON object.
func generate(this js.Value, args []js.Value) interface{} {
	project := domain.ProjectMetadata{Version: "0.0.0"}
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[0].String()), &project); err != nil {
			return makeError("invalid project: "+err.Error(), nil)
		}
	}

	log := &collectLogger{}
	uc := usecase.NewGenerateUseCase(source, extract, renderer, log)
	result, ok := usecase.Run(context.Background(), uc, usecase.GenerateRequest{
		Roots:     []string{"."},
		Project:   project,
		Generator: domain.Generator{Name: "apidoc", Version: "wasm", URL: "https://apidocjs.com"},
		Workers:   1,
	})
	if !ok {
		return makeError(log.lastError, log.lastFields)
	}
	if result == nil {
		return makeResult(map[string]interface{}{
			"nothing":  true,
			"warnings": log.warnings,
		})
	}

	return makeResult(map[string]interface{}{
		"data":      result.Data,
		"project":   result.Project,
		"endpoints": result.Endpoints,
		"warnings":  log.warnings,
	})
}

func removeFile(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: apidocRemove(filename)", nil)
	}

	filename := args[0].String()
	source.Delete(filename)

	return makeResult(map[string]interface{}{
		"success":  true,
		"filename": filename,
	})
}

func clearFiles(this js.Value, args []js.Value) interface{} {
	source.Clear()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func listFiles(this js.Value, args []js.Value) interface{} {
	return makeResult(map[string]interface{}{
		"files": source.Names(),
	})
}

// collectLogger keeps warnings and the reported error for the JS caller.
type collectLogger struct {
	mu         sync.Mutex
	warnings   []string
	lastError  string
	lastFields map[string]any
}

func (l *collectLogger) Debug(string, map[string]any)   {}
func (l *collectLogger) Verbose(string, map[string]any) {}
func (l *collectLogger) Info(string, map[string]any)    {}

func (l *collectLogger) Warn(msg string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *collectLogger) Error(msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError, l.lastFields = msg, fields
}

func makeError(msg string, fields map[string]any) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error":   msg,
		"context": fields,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
