package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/unkn0wn-root/sheetcache/purchase"
)

func table(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func printBooks(w io.Writer, books []purchase.Book) {
	tw := table(w, "ISBN", "SUBJECT", "NAME", "PUBLISHER", "PRICES")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.ISBN, b.Subject, b.Name, b.Publisher, strings.Join(b.ListPriceLabels(), ", "))
	}
	_ = tw.Flush()
}

func printStudents(w io.Writer, students []purchase.Student) {
	tw := table(w, "SEAT", "NUMBER", "NAME")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Seat, s.Number, s.Name)
	}
	_ = tw.Flush()
}

func printOrders(w io.Writer, orders []purchase.Order) {
	tw := table(w, "ISBN", "NAME", "STATUS", "ORDERED", "PAID", "DELIVERED", "PRICE")
	for _, o := range orders {
		var paid, delivered int
		for _, s := range o.Students {
			if s.Status.Has(purchase.Paid) {
				paid++
			}
			if s.Status.Has(purchase.Delivered) {
				delivered++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			o.Book.ISBN, o.Book.Name, o.Status, o.TotalOrdered, paid, delivered,
			formatAmount(o.Book.CurrentPrice(o.TotalOrdered)))
	}
	_ = tw.Flush()
}

func printStudentOrders(w io.Writer, number string, orders []purchase.Order) {
	tw := table(w, "ISBN", "NAME", "STATUS", "STATE", "PRICE")
	for _, o := range orders {
		st, _ := o.StudentStatus(number)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.Book.ISBN, o.Book.Name, o.Status, st, strings.Join(o.Book.PriceLabels(o.TotalOrdered), ", "))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "total: NT$ %s\n", formatAmount(purchase.OrdersTotal(orders)))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
