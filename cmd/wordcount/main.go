// Command wordcount is the standard map/reduce example: counting words in a
// line-delimited input file, sharded across R output files. Grounded on
// dgryski/dmrgo's examples/wordcount.go CLI shape.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dermesser/localmr"
)

var (
	inputPath = flag.String("input", "", "path to a line-delimited input file (required)")
	reducers  = flag.Int("reducers", 3, "number of reduce shards")
	mappers   = flag.Int("mappers", 4, "maximum parallel map partitions")
	outPrefix = flag.String("out", "wordcount_output_", "prefix for final shard files")
	keepTemp  = flag.Bool("keep-temp", false, "keep intermediate shuffle files")
	verbose   = flag.Bool("v", false, "enable verbose logging")
)

func main() {
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: wordcount -input=<file> [-reducers=N] [-mappers=N]")
		os.Exit(2)
	}

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	records, err := readLinesAsRecords(*inputPath)
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}

	mr := localmr.FuncMapReducer{
		MapFunc: func(e *localmr.MEmitter, r localmr.Record) {
			for _, word := range strings.Fields(strings.ToLower(r.Value)) {
				e.Emit(word, "1")
			}
		},
		ReduceFunc: func(e *localmr.REmitter, mr localmr.MultiRecord) {
			count := 0
			for _, v := range mr.Values() {
				n, err := strconv.Atoi(v)
				if err != nil {
					continue
				}
				count += n
			}
			e.Emit(fmt.Sprintf("%s: %d", mr.Key(), count))
		},
	}

	params := localmr.NewParameters(
		localmr.WithMappers(*mappers),
		localmr.WithReducers(*reducers),
		localmr.WithReduceOutputPrefix(*outPrefix),
		localmr.WithKeepTempFiles(*keepTemp),
	)

	err = localmr.Run(
		localmr.BundleOf(mr),
		params,
		localmr.SliceInput(records),
		localmr.FileSinkGenerator{},
		logger,
	)
	if err != nil {
		log.Fatalf("wordcount run failed: %v", err)
	}
}

// readLinesAsRecords reads path line by line, assigning each line a
// positional string key starting at "1", mirroring the reference's
// RecordIterator (formats/util.rs) used to turn a bare value stream into
// (key, value) Records.
func readLinesAsRecords(path string) ([]localmr.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []localmr.Record
	counter := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		counter++
		records = append(records, localmr.Record{
			Key:   strconv.Itoa(counter),
			Value: scanner.Text(),
		})
	}
	return records, scanner.Err()
}
