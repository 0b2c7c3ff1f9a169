// Package defaultos bakes the default operating-system image loaded below
// every user program: exception and interrupt handlers that keep a program
// without its own IVT runnable, plus HALT/READ/WRITE/TIME/DATE service
// calls. Grounded on original_source/src/editor/default_os.rs, rewritten
// into this module's compiler syntax and IVT<n> loader convention.
package defaultos

// Org is the load address of the default OS image: 2KB below the
// framebuffer base, leaving room for any user ORG below it.
const Org = 0x2000 - 512

// Source is k91 assembly for the default handlers. Every IVTn label is
// patched into CPU.IVT[n] by the loader (internal/loader's "IVT<n>"
// convention). Traps 0-4 and unused device IRQs halt-and-catch-fire since
// a program that takes one without installing its own handler has nothing
// sensible to do next. The timer IRQ (6) only acknowledges the PIC and
// returns. SVC11-15
// implement HALT, READ, WRITE, TIME and DATE.
//
// The entry sequence (spec: push SR, PC, FP; advance SP by 3) plus each
// handler's own PUSHR (7 words) put a caller's stack argument 10 words
// below SP, not titomachine's 9 - every stack-relative offset here is
// shifted by one from the original for that reason.
const Source = `
ORG ` + "0x1E00" + `

IVT0  HCF
IVT1  HCF
IVT2  HCF
IVT3  HCF
IVT4  HCF

IVT5  HCF

IVT6  PUSHR SP, =0
      LOAD  R0, =0
      OUT   R0, =0x20
      POPR  SP, =0
      IEXIT SP, =0

IVT7  HCF
IVT8  HCF
IVT9  HCF
IVT10 HCF

IVT11 HCF

IVT12 PUSHR SP, =0
      IN    R1, =KBD
      LOAD  R2, -10(SP)
      STORE R1, @R2
      POPR  SP, =0
      IEXIT SP, =1

IVT13 PUSHR SP, =0
      LOAD  R1, -10(SP)
      OUT   R1, =CRT
      POPR  SP, =0
      IEXIT SP, =1

IVT14 PUSHR SP, =0
      IN    R1, =RTC
      LOAD  R2, R1
      MOD   R2, =60
      STORE R2, @-10(SP)
      DIV   R1, =60
      LOAD  R2, R1
      MOD   R2, =60
      STORE R2, @-11(SP)
      DIV   R1, =60
      LOAD  R2, R1
      MOD   R2, =24
      STORE R2, @-12(SP)
      POPR  SP, =0
      IEXIT SP, =3

IVT15 PUSHR SP, =0
      IN    R1, =RTC
      LOAD  R2, R1
      LOAD  R3, =3600
      MUL   R3, =24
      MOD   R2, R3
      SUB   R1, R2
      DIV   R1, R3
      LOAD  R2, =1970
      LOAD  R3, R1
      MOD   R3, =1461
      SUB   R1, R3
      DIV   R1, =1461
      MUL   R1, =4
      ADD   R2, R1

      LOAD  R1, =0

      COMP  R3, =365
      JLES  YEAR_DONE
      SUB   R3, =365
      ADD   R2, =1

      COMP  R3, =365
      JLES  YEAR_DONE
      SUB   R3, =365
      ADD   R2, =1

      LOAD  R1, =1
      COMP  R3, =365
      JLES  YEAR_DONE
      LOAD  R1, =0
      SUB   R3, =366
      ADD   R2, =1

YEAR_DONE STORE R2, @-13(SP)

      LOAD  R2, =1
      COMP  R3, =31
      JLES  MONTH_DONE
      SUB   R3, =31

      ADD   R2, =1
      COMP  R3, =28(R1)
      JLES  MONTH_DONE
      SUB   R3, =28(R1)

      ADD   R2, =1
      COMP  R3, =31
      JLES  MONTH_DONE
      SUB   R3, =31

      ADD   R2, =1
      COMP  R3, =30
      JLES  MONTH_DONE
      SUB   R3, =30

      ADD   R2, =1
      COMP  R3, =31
      JLES  MONTH_DONE
      SUB   R3, =31

      ADD   R2, =1
      COMP  R3, =30
      JLES  MONTH_DONE
      SUB   R3, =30

      ADD   R2, =1
      COMP  R3, =31
      JLES  MONTH_DONE
      SUB   R3, =31

      ADD   R2, =1
      COMP  R3, =31
      JLES  MONTH_DONE
      SUB   R3, =31

      ADD   R2, =1
      COMP  R3, =30
      JLES  MONTH_DONE
      SUB   R3, =30

      ADD   R2, =1
      COMP  R3, =31
      JLES  MONTH_DONE
      SUB   R3, =31

      ADD   R2, =1
      COMP  R3, =30
      JLES  MONTH_DONE
      SUB   R3, =30

      ADD   R2, =1

MONTH_DONE OUT   R2, =CRT
      STORE R2, @-12(SP)
      ADD   R3, =1
      STORE R3, @-11(SP)
      POPR  SP, =0
      IEXIT SP, =3
`
