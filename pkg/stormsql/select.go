package stormsql

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/asdine/storm/v3/q"
	"github.com/pkg/errors"
	"github.com/riekert/todo/pkg/structs"
	"github.com/xwb1989/sqlparser"
)

// A SelectClause contains all the parsed SQL data.
type SelectClause struct {
	// SelectedFields is empty when all the fields are selected.
	SelectedFields  []string
	Count           bool
	Tablename       string
	Matcher         q.Matcher
	Skip            int
	Limit           int
	OrderBy         []string
	OrderByReversed bool
}

// ParseSelect parses the given SELECT statement.
func ParseSelect(sql string) (*SelectClause, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse SQL")
	}

	s, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errors.New("not a select statement")
	}

	var sc SelectClause

	// SELECT * ...
	// SELECT Owner,UpdatedAt ...
	for _, se := range s.SelectExprs {
		switch v := se.(type) {
		case *sqlparser.StarExpr:
			sc.SelectedFields = []string{}
		case *sqlparser.AliasedExpr:
			switch v := v.Expr.(type) {
			case *sqlparser.ColName:
				sc.SelectedFields = append(sc.SelectedFields, v.Name.String())
			case *sqlparser.FuncExpr:
				if !v.Name.EqualString("count") {
					return nil, errors.Errorf("unsupported function: %s", v.Name.String())
				}
				sc.SelectedFields = []string{}
				sc.Count = true
			default:
				return nil, errors.New("unsupported select expression")
			}
		default:
			return nil, errors.New("unsupported select expression")
		}
	}

	// FROM users
	if len(s.From) != 1 {
		return nil, errors.New("only one table can be selected")
	}
	table, ok := s.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, errors.New("unsupported table expression")
	}
	sc.Tablename = sqlparser.GetTableName(table.Expr).String()
	if sc.Tablename == "" {
		return nil, errors.New("unsupported table expression")
	}

	// WHERE
	sc.Matcher = q.And()
	if s.Where != nil {
		sc.Matcher, err = parseWhereExpr(s.Where.Expr)
		if err != nil {
			return nil, err
		}
	}

	// LIMIT 5
	// LIMIT 2,5
	if s.Limit != nil {
		if s.Limit.Offset != nil {
			sc.Skip, err = parseInt(s.Limit.Offset)
			if err != nil {
				return nil, errors.Wrap(err, "offset")
			}
		}
		sc.Limit, err = parseInt(s.Limit.Rowcount)
		if err != nil {
			return nil, errors.Wrap(err, "limit")
		}
	}

	// ORDER BY UpdatedAt
	// ORDER BY UpdatedAt DESC
	// ORDER BY UpdatedAt DESC, CreatedAt ASC     => All will be DESC due to strom limitation
	for _, ob := range s.OrderBy {
		col, ok := ob.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("unsupported order by expression")
		}
		if ob.Direction == sqlparser.DescScr {
			sc.OrderByReversed = true
		}
		sc.OrderBy = append(sc.OrderBy, col.Name.String())
	}

	return &sc, nil
}

// Validate checks that the selected and ordering fields exist in the given record.
func (sc *SelectClause) Validate(record any) error {
	fields, err := structs.Fields(record)
	if err != nil {
		return err
	}

	known := map[string]bool{}
	for _, field := range fields {
		known[field] = true
	}

	for _, field := range append(append([]string{}, sc.SelectedFields...), sc.OrderBy...) {
		if !known[field] {
			return errors.Errorf("unknown field %s in %s", field, sc.Tablename)
		}
	}
	return nil
}

// Project returns the selected fields of the given records.
// records is a slice, or a pointer to a slice, of structures or pointers to structure.
func (sc *SelectClause) Project(records any) ([]map[string]any, error) {
	v := reflect.Indirect(reflect.ValueOf(records))
	if v.Kind() != reflect.Slice {
		return nil, errors.Errorf("could not project %T", records)
	}

	rows := make([]map[string]any, v.Len())
	for i := range rows {
		row := map[string]any{}
		for _, field := range sc.SelectedFields {
			value, err := structs.GetField(v.Index(i).Interface(), field)
			if err != nil {
				return nil, errors.Wrapf(err, "could not select %s", field)
			}
			row[field] = value
		}
		rows[i] = row
	}
	return rows, nil
}

func parseWhereExpr(expr sqlparser.Expr) (q.Matcher, error) {
	switch v := expr.(type) {
	//
	//
	//
	case *sqlparser.ComparisonExpr:
		col, ok := v.Left.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("left operand must be a column")
		}
		field := col.Name.String()

		// Parse value
		value, err := parseValue(v.Right)
		if err != nil {
			return nil, err
		}

		// Parse operator
		switch v.Operator {
		case sqlparser.EqualStr:
			return q.Eq(field, value), nil
		case sqlparser.NotEqualStr:
			return q.Not(q.Eq(field, value)), nil
		case sqlparser.GreaterThanStr:
			return q.Gt(field, value), nil
		case sqlparser.GreaterEqualStr:
			return q.Gte(field, value), nil
		case sqlparser.InStr:
			return q.In(field, value), nil
		case sqlparser.LessThanStr:
			return q.Lt(field, value), nil
		case sqlparser.LessEqualStr:
			return q.Lte(field, value), nil
		case sqlparser.LikeStr:
			return q.Re(field, fmt.Sprintf("%v", value)), nil
		default:
			return nil, errors.Errorf("unsupported operator: %s", v.Operator)
		}
		//
		//
		//
	case *sqlparser.IsExpr:
		col, ok := v.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("IS operand must be a column")
		}

		switch v.Operator {
		case sqlparser.IsNullStr:
			return q.Eq(col.Name.String(), nil), nil
		case sqlparser.IsNotNullStr:
			return q.Not(q.Eq(col.Name.String(), nil)), nil
		default:
			return nil, errors.Errorf("unsupported operator: %s", v.Operator)
		}
		//
		//
		//
	case *sqlparser.AndExpr:
		left, right, err := parseBoth(v.Left, v.Right)
		if err != nil {
			return nil, err
		}
		return q.And(left, right), nil
		//
		//
		//
	case *sqlparser.OrExpr:
		left, right, err := parseBoth(v.Left, v.Right)
		if err != nil {
			return nil, err
		}
		return q.Or(left, right), nil
		//
		//
		//
	case *sqlparser.ParenExpr:
		return parseWhereExpr(v.Expr)
	default:
		return nil, errors.Errorf("unsupported where expression: %s", sqlparser.String(expr))
	}
}

func parseBoth(l, r sqlparser.Expr) (left q.Matcher, right q.Matcher, err error) {
	left, err = parseWhereExpr(l)
	if err != nil {
		return nil, nil, err
	}

	right, err = parseWhereExpr(r)
	return left, right, err
}

func parseValue(expr sqlparser.Expr) (any, error) {
	switch v := expr.(type) {
	case sqlparser.BoolVal:
		return bool(v), nil
	case *sqlparser.NullVal:
		return nil, nil
	case sqlparser.ValTuple:
		var tuple []any
		for _, t := range v {
			value, err := parseValue(t)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, value)
		}
		return tuple, nil
	case *sqlparser.SQLVal:
		return parseSQLVal(v)
	default:
		return nil, errors.Errorf("unsupported value: %s", sqlparser.String(expr))
	}
}

func parseInt(expr sqlparser.Expr) (int, error) {
	value, err := parseValue(expr)
	if err != nil {
		return 0, err
	}

	i, ok := value.(int)
	if !ok {
		return 0, errors.Errorf("not an integer: %s", sqlparser.String(expr))
	}
	return i, nil
}

func parseSQLVal(v *sqlparser.SQLVal) (any, error) {
	switch v.Type {
	case sqlparser.StrVal:
		// Try to convert to time.Time if possible
		if t, err := dateparse.ParseAny(string(v.Val)); err == nil {
			return t.UTC(), nil
		}
		return string(v.Val), nil
	case sqlparser.IntVal:
		i, err := strconv.Atoi(string(v.Val))
		return i, errors.Wrap(err, "could not parse integer")
	case sqlparser.FloatVal:
		f, err := strconv.ParseFloat(string(v.Val), 64)
		return f, errors.Wrap(err, "could not parse float")
	case sqlparser.HexNum:
		i, err := strconv.ParseInt(string(v.Val), 0, 64)
		return i, errors.Wrap(err, "could not parse hexadecimal number")
	case sqlparser.HexVal:
		b, err := v.HexDecode()
		return b, errors.Wrap(err, "could not decode hexadecimal value")
	case sqlparser.BitVal:
		return len(v.Val) > 0 && v.Val[0] == '1', nil
	default:
		return nil, errors.New("unsupported placeholder value")
	}
}
