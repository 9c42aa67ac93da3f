package cli

import (
	"fmt"
	"io"
)

func PrintRootHelp(w io.Writer) {
	fmt.Fprintln(w, `queryline — entity query filter and aggregation engine

USAGE
  queryline [global flags] <command> [args]

GLOBAL FLAGS
  --backend sqlite|postgres
  --sqlite-path <file.db>
  --pg-dsn <dsn>
  --pg-schema <name>
  --ref <refdata.json>
  --user <id>
  --tz <zone>
  --format pretty|json|csv

COMMANDS
  init                          create the schema, seed reference data
  load [--import file.jsonl]    import entities (JSON lines)
  query [--filter f=expr ...]   evaluate a query
  filters                       list available filters for a scope
  saved <list|show|save|delete>

Filters use the short form, e.g. --filter "status_id=o" or
--filter "due_date=>t-7". Run "queryline <command> --help" for flags.`)
}
