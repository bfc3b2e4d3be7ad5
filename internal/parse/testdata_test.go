package parse

const invoiceText = `TAX INVOICE
Invoice No: INV/2025/0118
Invoice Date: 12-Mar-2025
Bill To:
GSTIN: 27ABCDE1234F1Z5
Sharma Textiles Pvt Ltd
Pune, Maharashtra
Description
HSN
Qty
Rate
Amount
Cotton Fabric
520811
10
3500.00
35000.00
Polyester Thread
540110
5
roll
1,200.00
6,000.00
Subtotal:
Rs. 41,000.00
CGST @ 9%:
Rs. 3,690.00
SGST @ 9%:
Rs. 3,690.00
Grand Total:
Rs. 48,380.00`

const purchaseOrderText = `PURCHASE ORDER
PO Number: PO-2025-0031
PO Date: 05/02/2025
Delivery Date: 20/02/2025
Vendor:
GSTIN: 29AAACB1234C1Z2
Bharat Cable Industries
Payment Terms: Net 30 days
S.No
Description
HSN
Qty
Unit
Unit Price
Amount
1
Copper Wire 2.5mm
854449
20
roll
2,450.00
49,000.00
Subtotal:
Rs. 49,000.00
IGST @ 18%:
Rs. 8,820.00
Grand Total:
Rs. 57,820.00`

const resumeText = `Priya Sharma
priya.sharma@example.com | +91 98765 43210
Education
B.Tech Computer Science, CGPA: 8.7/10
Skills
Go, SQL, Kubernetes
Work Experience
Backend Engineer`

const idCardText = `NORTHSTAR SYSTEMS
Employee Identity Card
Employee Name:
Ananya Rao
Employee ID:
NS-EMP-2024-0042
Designation:
Senior Analyst
Department:
Finance
Date of Joining:
01/04/2024
Valid Until:
31/03/2027
Blood Group:
B+`

const plainText = `Meeting notes
Discuss quarterly plan with the team
Call back tomorrow`
