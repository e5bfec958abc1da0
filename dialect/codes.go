package dialect

// ForReader maps a reader format code to a preset.
//
//	0 default, 1 excel, 2 informix_unload, 3 informix_unload_csv, 4 mongodb_csv,
//	5 mongodb_tsv, 6 mysql, 7 rfc4180, 8 oracle, 9 postgresql_csv,
//	10 postgresql_text, 11 tdf
//
// Unknown codes fall back to Default. Note that the writer table differs from
// 10 upwards; see ForWriter.
func ForReader(code int) Dialect {
	switch code {
	case 1:
		return Excel
	case 2:
		return InformixUnload
	case 3:
		return InformixUnloadCSV
	case 4:
		return MongoDBCSV
	case 5:
		return MongoDBTSV
	case 6:
		return MySQL
	case 7:
		return RFC4180
	case 8:
		return Oracle
	case 9:
		return PostgreSQLCSV
	case 10:
		return PostgreSQLText
	case 11:
		return TDF
	default:
		return Default
	}
}

// ForWriter maps a writer format code to a preset.
//
//	0 default, 1 excel, 2 informix_unload, 3 informix_unload_csv, 4 mongodb_csv,
//	5 mongodb_tsv, 6 mysql, 7 rfc4180, 8 oracle, 9 postgresql_csv,
//	10 postgresql_csv, 11 postgresql_text, 12 tdf
//
// Code 10 selects postgresql_csv here, and text/tdf sit one code higher than
// in ForReader. Existing callers depend on these numbers, so the two tables
// are kept as they are. Use ByName when reader and writer must agree.
func ForWriter(code int) Dialect {
	switch code {
	case 1:
		return Excel
	case 2:
		return InformixUnload
	case 3:
		return InformixUnloadCSV
	case 4:
		return MongoDBCSV
	case 5:
		return MongoDBTSV
	case 6:
		return MySQL
	case 7:
		return RFC4180
	case 8:
		return Oracle
	case 9, 10:
		return PostgreSQLCSV
	case 11:
		return PostgreSQLText
	case 12:
		return TDF
	default:
		return Default
	}
}

// MaxReaderCode and MaxWriterCode are the highest codes each table knows.
const (
	MaxReaderCode = 11
	MaxWriterCode = 12
)
