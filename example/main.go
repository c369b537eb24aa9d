package main

import (
	"fmt"
	"log"

	"github.com/theflywheel/hashtable"
	"github.com/theflywheel/hashtable/hashfn"
	"github.com/theflywheel/hashtable/internal/logger"
)

func main() {
	l := logger.New(logger.WithLoggerLevel(logger.LevelDebug))

	// Create a table keyed by integers
	tbl, err := hashtable.New[uint64, uint64](2, hashtable.Callbacks[uint64, uint64]{
		Hash:  hashfn.Knuth,
		Equal: hashfn.Equal[uint64],
		DestroyValue: func(v uint64) {
			l.Trace("released value", "value", v)
		},
	}, hashtable.WithLogger(l.SLog()))
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}
	defer tbl.Destroy()

	fmt.Println("Table created successfully")

	// Insert some data
	for i := uint64(0); i < 10; i++ {
		if _, err := tbl.Set(i, i*100); err != nil {
			log.Fatalf("Failed to insert key %d: %v", i, err)
		}
	}

	fmt.Printf("Inserted 10 key-value pairs (len=%d cap=%d)\n", tbl.Len(), tbl.Cap())

	// Retrieve and display some values
	for i := uint64(0); i < 15; i += 2 {
		if v, found := tbl.Get(i); found {
			fmt.Printf("Key %d => Value %d\n", i, v)
		} else {
			fmt.Printf("Key %d not found\n", i)
		}
	}

	// Update a value
	existed, err := tbl.Set(2, 999)
	if err != nil {
		log.Fatalf("Failed to update key: %v", err)
	}

	// Verify the update
	if v, found := tbl.Get(2); found {
		fmt.Printf("Updated key 2 => Value %d (existed=%t)\n", v, existed)
	}

	// Remove most entries and watch the table shrink
	for i := uint64(0); i < 9; i++ {
		if _, err := tbl.Remove(i); err != nil {
			log.Fatalf("Failed to remove key %d: %v", i, err)
		}
	}
	fmt.Printf("After removals len=%d cap=%d\n", tbl.Len(), tbl.Cap())

	fmt.Println("Example completed successfully")
}
