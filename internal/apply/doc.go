// Package apply switches targets to a new preset. Each target is cleared
// from every known location before the new value is written, so a target
// ends up either fully on the new preset or fully cleared. Targets are
// independent and run concurrently.
package apply
